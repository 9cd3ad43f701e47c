package documentacion

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inmoportal/api-portal/internal/propiedad"
	"gorm.io/gorm"
)

// Clasificación del archivo según el content type declarado.
const (
	TipoImagen = "IMAGE"
	TipoPDF    = "PDF"
	TipoExcel  = "EXCEL"
	TipoCSV    = "CSV"
	TipoOtro   = "OTHER"
)

// ClasificarArchivo mapea un content type declarado a la clasificación
// gruesa que guarda el portal. No inspecciona el contenido.
func ClasificarArchivo(contentType string) string {
	mime := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return TipoImagen
	case mime == "application/pdf":
		return TipoPDF
	case strings.Contains(mime, "excel") || strings.Contains(mime, "spreadsheet"):
		return TipoExcel
	case mime == "text/csv":
		return TipoCSV
	default:
		return TipoOtro
	}
}

// Documentacion es un documento subido sobre una propiedad. Solo existe
// como fuente de notificaciones y listado; el archivo vive aguas arriba.
type Documentacion struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Titulo      string `json:"title"`
	ArchivoURL  string `json:"fileUrl"`
	TipoArchivo string `gorm:"type:varchar(10)" json:"fileType"`

	PropiedadID uint                `gorm:"index" json:"propertyId"`
	Propiedad   propiedad.Propiedad `gorm:"foreignKey:PropiedadID" json:"property,omitempty"`

	SubidoPorID uint `json:"uploaderId"`
}

func (Documentacion) TableName() string { return "documentaciones" }

func (d *Documentacion) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
