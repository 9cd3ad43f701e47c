package usuario

import (
	"github.com/inmoportal/api-portal/internal/permisos"
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, u *Usuario) error
	BuscarPorID(db *gorm.DB, id uint) (*Usuario, error)
	BuscarPorEmail(db *gorm.DB, email string) (*Usuario, error)
	Listar(db *gorm.DB) ([]Usuario, error)
	ListarAdmins(db *gorm.DB) ([]Usuario, error)
	Actualizar(db *gorm.DB, u *Usuario) error
	ActualizarEstado(db *gorm.DB, id uint, estado string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, u *Usuario) error {
	return db.Create(u).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Usuario, error) {
	var u Usuario
	err := db.First(&u, id).Error
	return &u, err
}

func (r *repositoryImpl) BuscarPorEmail(db *gorm.DB, email string) (*Usuario, error) {
	var u Usuario
	err := db.Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *repositoryImpl) Listar(db *gorm.DB) ([]Usuario, error) {
	var list []Usuario
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

// ListarAdmins devuelve todos los usuarios con rol ADMIN; es la consulta
// que alimenta los destinatarios de las notificaciones.
func (r *repositoryImpl) ListarAdmins(db *gorm.DB) ([]Usuario, error) {
	var list []Usuario
	err := db.Where("rol = ?", permisos.RolAdmin).Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Actualizar(db *gorm.DB, u *Usuario) error {
	return db.Save(u).Error
}

func (r *repositoryImpl) ActualizarEstado(db *gorm.DB, id uint, estado string) error {
	return db.Model(&Usuario{}).Where("id = ?", id).Update("estado", estado).Error
}
