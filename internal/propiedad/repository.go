package propiedad

import (
	"github.com/inmoportal/api-portal/internal/permisos"
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, p *Propiedad) error
	BuscarPorID(db *gorm.DB, id uint) (*Propiedad, error)
	ListarParaActor(db *gorm.DB, actor permisos.Actor) ([]Propiedad, error)
	Actualizar(db *gorm.DB, p *Propiedad) error
	Eliminar(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, p *Propiedad) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Propiedad, error) {
	var p Propiedad
	err := db.First(&p, id).Error
	return &p, err
}

// ListarParaActor filtra según el rol: el admin ve todo, el propietario
// sus inmuebles, el inquilino el que alquila.
func (r *repositoryImpl) ListarParaActor(db *gorm.DB, actor permisos.Actor) ([]Propiedad, error) {
	var list []Propiedad
	q := db.Order("created_at DESC")
	switch actor.Rol {
	case permisos.RolAdmin:
	case permisos.RolPropietario:
		q = q.Where("propietario_id = ?", actor.ID)
	case permisos.RolInquilino:
		q = q.Where("inquilino_id = ?", actor.ID)
	default:
		return []Propiedad{}, nil
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Actualizar(db *gorm.DB, p *Propiedad) error {
	return db.Save(p).Error
}

func (r *repositoryImpl) Eliminar(db *gorm.DB, id uint) error {
	return db.Delete(&Propiedad{}, id).Error
}
