package documentacion

import (
	"github.com/inmoportal/api-portal/internal/permisos"
	"gorm.io/gorm"
)

// Filtros acota el listado de documentación.
type Filtros struct {
	PropiedadID *uint
	TipoArchivo string
	Page        int
	Limit       int
}

type Repository interface {
	Salvar(db *gorm.DB, d *Documentacion) error
	BuscarPorID(db *gorm.DB, id string) (*Documentacion, error)
	Listar(db *gorm.DB, actor permisos.Actor, f Filtros) ([]Documentacion, int64, error)
	Eliminar(db *gorm.DB, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, d *Documentacion) error {
	return db.Create(d).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Documentacion, error) {
	var d Documentacion
	err := db.Preload("Propiedad").Where("id = ?", id).First(&d).Error
	return &d, err
}

func (r *repositoryImpl) Listar(db *gorm.DB, actor permisos.Actor, f Filtros) ([]Documentacion, int64, error) {
	q := db.Model(&Documentacion{})
	switch actor.Rol {
	case permisos.RolAdmin:
	case permisos.RolPropietario:
		q = q.Joins("JOIN propiedades ON propiedades.id = documentaciones.propiedad_id").
			Where("propiedades.propietario_id = ?", actor.ID)
	case permisos.RolInquilino:
		q = q.Joins("JOIN propiedades ON propiedades.id = documentaciones.propiedad_id").
			Where("propiedades.inquilino_id = ?", actor.ID)
	default:
		q = q.Where("1 = 0")
	}
	if f.PropiedadID != nil {
		q = q.Where("documentaciones.propiedad_id = ?", *f.PropiedadID)
	}
	if f.TipoArchivo != "" {
		q = q.Where("documentaciones.tipo_archivo = ?", f.TipoArchivo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Documentacion
	err := q.Preload("Propiedad").
		Order("documentaciones.created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&list).Error
	return list, total, err
}

func (r *repositoryImpl) Eliminar(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&Documentacion{}).Error
}
