package pago

import (
	"time"

	"github.com/inmoportal/api-portal/internal/permisos"
	"gorm.io/gorm"
)

// Filtros acota el listado de pagos.
type Filtros struct {
	PropiedadID *uint
	InquilinoID *uint
	Estado      string
	Desde       *time.Time
	Hasta       *time.Time
	Page        int
	Limit       int
}

type Repository interface {
	Salvar(db *gorm.DB, p *Pago) error
	BuscarPorID(db *gorm.DB, id string) (*Pago, error)
	Listar(db *gorm.DB, actor permisos.Actor, f Filtros) ([]Pago, int64, error)
	Proximos(db *gorm.DB, actor permisos.Actor, dias int) ([]Pago, error)
	Actualizar(db *gorm.DB, p *Pago) error
	Eliminar(db *gorm.DB, id string) error
	Estadisticas(db *gorm.DB, actor permisos.Actor) (*EstadisticasDTO, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, p *Pago) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Pago, error) {
	var p Pago
	err := db.Preload("Propiedad").Where("id = ?", id).First(&p).Error
	return &p, err
}

// scopeActor restringe la consulta al conjunto visible del actor: el
// admin ve todo, el propietario los pagos de sus propiedades, el
// inquilino los que tiene asignados.
func scopeActor(q *gorm.DB, actor permisos.Actor) *gorm.DB {
	switch actor.Rol {
	case permisos.RolAdmin:
		return q
	case permisos.RolPropietario:
		return q.Joins("JOIN propiedades ON propiedades.id = pagos.propiedad_id").
			Where("propiedades.propietario_id = ?", actor.ID)
	case permisos.RolInquilino:
		return q.Where("pagos.inquilino_id = ?", actor.ID)
	default:
		return q.Where("1 = 0")
	}
}

func (r *repositoryImpl) Listar(db *gorm.DB, actor permisos.Actor, f Filtros) ([]Pago, int64, error) {
	q := scopeActor(db.Model(&Pago{}), actor)
	if f.PropiedadID != nil {
		q = q.Where("pagos.propiedad_id = ?", *f.PropiedadID)
	}
	if f.InquilinoID != nil {
		q = q.Where("pagos.inquilino_id = ?", *f.InquilinoID)
	}
	if f.Estado != "" {
		q = q.Where("pagos.estado = ?", f.Estado)
	}
	if f.Desde != nil {
		q = q.Where("pagos.fecha_vencimiento >= ?", *f.Desde)
	}
	if f.Hasta != nil {
		q = q.Where("pagos.fecha_vencimiento <= ?", *f.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Pago
	err := q.Preload("Propiedad").
		Order("pagos.fecha_vencimiento DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&list).Error
	return list, total, err
}

// Proximos lista los pagos pendientes que vencen dentro de N días.
func (r *repositoryImpl) Proximos(db *gorm.DB, actor permisos.Actor, dias int) ([]Pago, error) {
	ahora := time.Now()
	var list []Pago
	err := scopeActor(db.Model(&Pago{}), actor).
		Where("pagos.estado = ?", EstadoPendiente).
		Where("pagos.fecha_vencimiento >= ? AND pagos.fecha_vencimiento <= ?",
			ahora, ahora.AddDate(0, 0, dias)).
		Preload("Propiedad").
		Order("pagos.fecha_vencimiento ASC").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Actualizar(db *gorm.DB, p *Pago) error {
	return db.Save(p).Error
}

func (r *repositoryImpl) Eliminar(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&Pago{}).Error
}

func (r *repositoryImpl) Estadisticas(db *gorm.DB, actor permisos.Actor) (*EstadisticasDTO, error) {
	sumar := func(q *gorm.DB) (float64, error) {
		var total float64
		err := q.Select("COALESCE(SUM(pagos.monto), 0)").Scan(&total).Error
		return total, err
	}

	stats := &EstadisticasDTO{}
	var err error

	if stats.TotalPagado, err = sumar(scopeActor(db.Model(&Pago{}), actor).
		Where("pagos.estado = ?", EstadoPagado)); err != nil {
		return nil, err
	}
	if stats.TotalPendiente, err = sumar(scopeActor(db.Model(&Pago{}), actor).
		Where("pagos.estado = ?", EstadoPendiente)); err != nil {
		return nil, err
	}
	if stats.TotalVencido, err = sumar(scopeActor(db.Model(&Pago{}), actor).
		Where("pagos.estado = ?", EstadoVencido)); err != nil {
		return nil, err
	}

	ahora := time.Now()
	inicioMes := time.Date(ahora.Year(), ahora.Month(), 1, 0, 0, 0, 0, ahora.Location())
	finMes := inicioMes.AddDate(0, 1, 0)
	if stats.PagadoEsteMes, err = sumar(scopeActor(db.Model(&Pago{}), actor).
		Where("pagos.estado = ?", EstadoPagado).
		Where("pagos.fecha_pago >= ? AND pagos.fecha_pago < ?", inicioMes, finMes)); err != nil {
		return nil, err
	}

	return stats, nil
}
