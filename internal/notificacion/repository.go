package notificacion

import "gorm.io/gorm"

type Repository interface {
	Crear(db *gorm.DB, n *Notificacion) error
	ListarPorUsuario(db *gorm.DB, usuarioID uint, page, limit int, soloNoLeidas bool) ([]Notificacion, int64, error)
	ContarNoLeidas(db *gorm.DB, usuarioID uint) (int64, error)
	BuscarPorID(db *gorm.DB, id string) (*Notificacion, error)
	MarcarLeida(db *gorm.DB, id string) error
	MarcarTodasLeidas(db *gorm.DB, usuarioID uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Crear(db *gorm.DB, n *Notificacion) error {
	return db.Create(n).Error
}

func (r *repositoryImpl) ListarPorUsuario(db *gorm.DB, usuarioID uint, page, limit int, soloNoLeidas bool) ([]Notificacion, int64, error) {
	q := db.Model(&Notificacion{}).Where("usuario_id = ?", usuarioID)
	if soloNoLeidas {
		q = q.Where("leida = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Notificacion
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *repositoryImpl) ContarNoLeidas(db *gorm.DB, usuarioID uint) (int64, error) {
	var count int64
	err := db.Model(&Notificacion{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Notificacion, error) {
	var n Notificacion
	err := db.Where("id = ?", id).First(&n).Error
	return &n, err
}

func (r *repositoryImpl) MarcarLeida(db *gorm.DB, id string) error {
	return db.Model(&Notificacion{}).Where("id = ?", id).Update("leida", true).Error
}

func (r *repositoryImpl) MarcarTodasLeidas(db *gorm.DB, usuarioID uint) error {
	return db.Model(&Notificacion{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		Update("leida", true).Error
}
