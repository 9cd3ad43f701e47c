package mantenimiento

import "gorm.io/gorm"

// Filtros acota el listado de mantenimientos.
type Filtros struct {
	PropiedadID   *uint
	PropietarioID *uint
	Estado        string
	Page          int
	Limit         int
}

type Repository interface {
	Salvar(db *gorm.DB, m *Mantenimiento) error
	BuscarPorID(db *gorm.DB, id string) (*Mantenimiento, error)
	Listar(db *gorm.DB, f Filtros) ([]Mantenimiento, int64, error)
	Actualizar(db *gorm.DB, m *Mantenimiento) error
	Eliminar(db *gorm.DB, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, m *Mantenimiento) error {
	return db.Create(m).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Mantenimiento, error) {
	var m Mantenimiento
	err := db.Preload("Propiedad").Where("id = ?", id).First(&m).Error
	return &m, err
}

func (r *repositoryImpl) Listar(db *gorm.DB, f Filtros) ([]Mantenimiento, int64, error) {
	q := db.Model(&Mantenimiento{})
	if f.PropiedadID != nil {
		q = q.Where("mantenimientos.propiedad_id = ?", *f.PropiedadID)
	}
	if f.Estado != "" {
		q = q.Where("mantenimientos.estado = ?", f.Estado)
	}
	if f.PropietarioID != nil {
		q = q.Joins("JOIN propiedades ON propiedades.id = mantenimientos.propiedad_id").
			Where("propiedades.propietario_id = ?", *f.PropietarioID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Mantenimiento
	err := q.Preload("Propiedad").
		Order("mantenimientos.created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&list).Error
	return list, total, err
}

func (r *repositoryImpl) Actualizar(db *gorm.DB, m *Mantenimiento) error {
	return db.Save(m).Error
}

func (r *repositoryImpl) Eliminar(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&Mantenimiento{}).Error
}
