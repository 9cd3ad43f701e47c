package pago

import "time"

type crearPagoDTO struct {
	PropiedadID      uint    `json:"propertyId"`
	InquilinoID      *uint   `json:"tenantId"`
	Monto            float64 `json:"amount"`
	FechaPago        *string `json:"paymentDate"`
	FechaVencimiento string  `json:"dueDate"`
	Estado           string  `json:"status"`
	MetodoPago       *string `json:"paymentMethod"`
	Referencia       *string `json:"reference"`
	Notas            *string `json:"notes"`
}

// actualizarPagoDTO usa punteros para distinguir campo ausente de campo
// en cero.
type actualizarPagoDTO struct {
	Monto            *float64 `json:"amount"`
	FechaPago        *string  `json:"paymentDate"`
	FechaVencimiento *string  `json:"dueDate"`
	Estado           *string  `json:"status"`
	MetodoPago       *string  `json:"paymentMethod"`
	Referencia       *string  `json:"reference"`
	Notas            *string  `json:"notes"`
	ComprobanteURL   *string  `json:"receiptUrl"`
}

type subirComprobanteDTO struct {
	ComprobanteURL string `json:"receiptUrl"`
}

// EstadisticasDTO son las sumas de montos por estado, acotadas al
// conjunto de pagos visible para el actor.
type EstadisticasDTO struct {
	TotalPagado    float64 `json:"totalPaid"`
	TotalPendiente float64 `json:"totalPending"`
	TotalVencido   float64 `json:"totalLate"`
	PagadoEsteMes  float64 `json:"thisMonthPaid"`
}

// parseFecha acepta fecha simple o RFC 3339.
func parseFecha(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
