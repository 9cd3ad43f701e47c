package pago

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/inmoportal/api-portal/internal/auth"
	"github.com/inmoportal/api-portal/internal/notificacion"
	"github.com/inmoportal/api-portal/internal/permisos"
	"github.com/inmoportal/api-portal/internal/propiedad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// Una sola conexión: con :memory: cada conexión del pool sería una
	// base distinta.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&propiedad.Propiedad{}, &Pago{}, &notificacion.Notificacion{}))
	return db
}

func ptrUint(v uint) *uint { return &v }

func conActor(r *http.Request, id uint, rol permisos.Rol) *http.Request {
	ctx := context.WithValue(r.Context(), auth.CtxUsuarioID, id)
	ctx = context.WithValue(ctx, auth.CtxRol, rol)
	return r.WithContext(ctx)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// crearPropiedad siembra una propiedad con dueño 10 e inquilino 20 salvo
// que se indique otra cosa.
func crearPropiedad(t *testing.T, db *gorm.DB, dueno, inquilino *uint) propiedad.Propiedad {
	t.Helper()
	p := propiedad.Propiedad{
		Titulo:        "Depto Centro",
		Codigo:        "P-" + uuid.NewString(),
		Direccion:     "Calle Falsa 123",
		PropietarioID: dueno,
		InquilinoID:   inquilino,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func crearPago(t *testing.T, db *gorm.DB, prop propiedad.Propiedad, estado string, monto float64) *Pago {
	t.Helper()
	p := Pago{
		PropiedadID:      prop.ID,
		InquilinoID:      prop.InquilinoID,
		Monto:            monto,
		FechaVencimiento: time.Now().AddDate(0, 0, 10),
		Estado:           estado,
		CreadoPorID:      1,
	}
	require.NoError(t, db.Create(&p).Error)
	p.Propiedad = prop
	return &p
}

func notificacionesDe(t *testing.T, db *gorm.DB, usuarioID uint, tipo string) []notificacion.Notificacion {
	t.Helper()
	var list []notificacion.Notificacion
	require.NoError(t, db.Where("usuario_id = ? AND tipo = ?", usuarioID, tipo).Find(&list).Error)
	return list
}

func totalNotificaciones(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&notificacion.Notificacion{}).Count(&n).Error)
	return n
}

func TestCrearPagoNotificaAlInquilino(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))

	body := jsonBody(t, map[string]interface{}{
		"propertyId": prop.ID,
		"tenantId":   20,
		"amount":     500.0,
		"dueDate":    "2026-09-15",
	})
	req := conActor(httptest.NewRequest(http.MethodPost, "/api/payments", body), 1, permisos.RolAdmin)
	rec := httptest.NewRecorder()
	h.Crear(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var creado Pago
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &creado))
	assert.Equal(t, EstadoPendiente, creado.Estado)
	assert.NotEmpty(t, creado.ID)

	avisos := notificacionesDe(t, db, 20, notificacion.TipoOrdenDePagoCreada)
	require.Len(t, avisos, 1)
	assert.Equal(t, "Nueva Orden de Pago", avisos[0].Titulo)
	require.NotNil(t, avisos[0].RelacionadoID)
	assert.Equal(t, creado.ID, *avisos[0].RelacionadoID)
	// El admin que creó la orden no se avisa a sí mismo.
	assert.Empty(t, notificacionesDe(t, db, 1, notificacion.TipoOrdenDePagoCreada))
}

func TestCrearPagoSinInquilinoNoNotifica(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), nil)

	body := jsonBody(t, map[string]interface{}{
		"propertyId": prop.ID,
		"amount":     300.0,
		"dueDate":    "2026-09-15",
	})
	req := conActor(httptest.NewRequest(http.MethodPost, "/api/payments", body), 1, permisos.RolAdmin)
	rec := httptest.NewRecorder()
	h.Crear(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 0, totalNotificaciones(t, db))
}

func TestCrearPagoPropietarioAjenoProhibido(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))

	body := jsonBody(t, map[string]interface{}{
		"propertyId": prop.ID,
		"amount":     500.0,
		"dueDate":    "2026-09-15",
	})
	req := conActor(httptest.NewRequest(http.MethodPost, "/api/payments", body), 11, permisos.RolPropietario)
	rec := httptest.NewRecorder()
	h.Crear(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCrearPagoInquilinoProhibido(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))

	body := jsonBody(t, map[string]interface{}{
		"propertyId": prop.ID,
		"amount":     500.0,
		"dueDate":    "2026-09-15",
	})
	req := conActor(httptest.NewRequest(http.MethodPost, "/api/payments", body), 20, permisos.RolInquilino)
	rec := httptest.NewRecorder()
	h.Crear(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestActualizarInquilinoBloqueadoEnProceso(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))

	for _, estado := range []string{EstadoEnProceso, EstadoPagado} {
		p := crearPago(t, db, prop, estado, 500)

		body := jsonBody(t, map[string]interface{}{"notes": "intento"})
		req := conActor(httptest.NewRequest(http.MethodPut, "/api/payments/"+p.ID, body), 20, permisos.RolInquilino)
		req = mux.SetURLVars(req, map[string]string{"id": p.ID})
		rec := httptest.NewRecorder()
		h.Actualizar(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, estado)

		var guardado Pago
		require.NoError(t, db.First(&guardado, "id = ?", p.ID).Error)
		assert.Nil(t, guardado.Notas, estado)
	}
}

func TestActualizarInquilinoNoEscribeEstado(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	p := crearPago(t, db, prop, EstadoPendiente, 500)

	body := jsonBody(t, map[string]interface{}{"status": EstadoPagado})
	req := conActor(httptest.NewRequest(http.MethodPut, "/api/payments/"+p.ID, body), 20, permisos.RolInquilino)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec := httptest.NewRecorder()
	h.Actualizar(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var guardado Pago
	require.NoError(t, db.First(&guardado, "id = ?", p.ID).Error)
	assert.Equal(t, EstadoPendiente, guardado.Estado)
}

func TestActualizarInquilinoIgnoraMontoYVencimiento(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	p := crearPago(t, db, prop, EstadoPendiente, 500)
	vencimientoOriginal := p.FechaVencimiento

	body := jsonBody(t, map[string]interface{}{
		"amount":  999.0,
		"dueDate": "2030-01-01",
		"notes":   "pagado por transferencia",
	})
	req := conActor(httptest.NewRequest(http.MethodPut, "/api/payments/"+p.ID, body), 20, permisos.RolInquilino)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec := httptest.NewRecorder()
	h.Actualizar(rec, req)

	// Los campos vedados se ignoran en silencio, la petición no falla.
	require.Equal(t, http.StatusOK, rec.Code)
	var guardado Pago
	require.NoError(t, db.First(&guardado, "id = ?", p.ID).Error)
	assert.EqualValues(t, 500, guardado.Monto)
	assert.Equal(t, vencimientoOriginal.UTC().Truncate(time.Second), guardado.FechaVencimiento.UTC().Truncate(time.Second))
	require.NotNil(t, guardado.Notas)
	assert.Equal(t, "pagado por transferencia", *guardado.Notas)
}

func TestSubirComprobanteTransiciona(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	p := crearPago(t, db, prop, EstadoPendiente, 500)

	body := jsonBody(t, map[string]string{"receiptUrl": "https://files.example/r1.pdf"})
	req := conActor(httptest.NewRequest(http.MethodPost, "/api/payments/"+p.ID+"/receipt", body), 20, permisos.RolInquilino)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec := httptest.NewRecorder()
	h.SubirComprobante(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var guardado Pago
	require.NoError(t, db.First(&guardado, "id = ?", p.ID).Error)
	assert.Equal(t, EstadoEnProceso, guardado.Estado)
	require.NotNil(t, guardado.ComprobanteURL)
	assert.Equal(t, "https://files.example/r1.pdf", *guardado.ComprobanteURL)

	// Avisa al dueño y no al inquilino que subió el comprobante.
	avisos := notificacionesDe(t, db, 10, notificacion.TipoEstadoDePagoActualizado)
	require.Len(t, avisos, 1)
	assert.Equal(t, "Comprobante Subido", avisos[0].Titulo)
	assert.Empty(t, notificacionesDe(t, db, 20, notificacion.TipoEstadoDePagoActualizado))
}

func TestSubirComprobanteBloqueadoUnaVezEnProceso(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	url := "https://files.example/r1.pdf"
	p := crearPago(t, db, prop, EstadoEnProceso, 500)
	require.NoError(t, db.Model(p).Update("comprobante_url", url).Error)

	body := jsonBody(t, map[string]string{"receiptUrl": "https://files.example/otro.pdf"})
	req := conActor(httptest.NewRequest(http.MethodPost, "/api/payments/"+p.ID+"/receipt", body), 20, permisos.RolInquilino)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec := httptest.NewRecorder()
	h.SubirComprobante(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var guardado Pago
	require.NoError(t, db.First(&guardado, "id = ?", p.ID).Error)
	require.NotNil(t, guardado.ComprobanteURL)
	assert.Equal(t, url, *guardado.ComprobanteURL)
}

func TestActualizarNotasNoNotifica(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	p := crearPago(t, db, prop, EstadoPendiente, 500)

	body := jsonBody(t, map[string]interface{}{"notes": "al día"})
	req := conActor(httptest.NewRequest(http.MethodPut, "/api/payments/"+p.ID, body), 1, permisos.RolAdmin)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec := httptest.NewRecorder()
	h.Actualizar(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, totalNotificaciones(t, db))
}

func TestActualizarEstadoNotificaExcluyendoActor(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	p := crearPago(t, db, prop, EstadoPendiente, 500)

	body := jsonBody(t, map[string]interface{}{"status": EstadoPagado})
	req := conActor(httptest.NewRequest(http.MethodPut, "/api/payments/"+p.ID, body), 1, permisos.RolAdmin)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec := httptest.NewRecorder()
	h.Actualizar(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, notificacionesDe(t, db, 20, notificacion.TipoEstadoDePagoActualizado), 1)
	assert.Len(t, notificacionesDe(t, db, 10, notificacion.TipoEstadoDePagoActualizado), 1)
	assert.Empty(t, notificacionesDe(t, db, 1, notificacion.TipoEstadoDePagoActualizado))
}

func TestTransicionInvalidaInquilino(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	p := crearPago(t, db, prop, EstadoCancelado, 500)

	// El propietario sí puede reactivar un pago cancelado.
	body := jsonBody(t, map[string]interface{}{"status": EstadoPendiente})
	req := conActor(httptest.NewRequest(http.MethodPut, "/api/payments/"+p.ID, body), 10, permisos.RolPropietario)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec := httptest.NewRecorder()
	h.Actualizar(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFlujoCompletoOrdenDePago(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))

	// El admin emite la orden.
	body := jsonBody(t, map[string]interface{}{
		"propertyId": prop.ID,
		"tenantId":   20,
		"amount":     500.0,
		"dueDate":    "2026-09-30",
	})
	req := conActor(httptest.NewRequest(http.MethodPost, "/api/payments", body), 1, permisos.RolAdmin)
	rec := httptest.NewRecorder()
	h.Crear(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var p Pago
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Len(t, notificacionesDe(t, db, 20, notificacion.TipoOrdenDePagoCreada), 1)

	// El inquilino sube el comprobante.
	body = jsonBody(t, map[string]string{"receiptUrl": "https://files.example/r9.pdf"})
	req = conActor(httptest.NewRequest(http.MethodPost, "/api/payments/"+p.ID+"/receipt", body), 20, permisos.RolInquilino)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec = httptest.NewRecorder()
	h.SubirComprobante(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var guardado Pago
	require.NoError(t, db.First(&guardado, "id = ?", p.ID).Error)
	assert.Equal(t, EstadoEnProceso, guardado.Estado)
	require.Len(t, notificacionesDe(t, db, 10, notificacion.TipoEstadoDePagoActualizado), 1)
	assert.Empty(t, notificacionesDe(t, db, 20, notificacion.TipoEstadoDePagoActualizado))

	// Con el pago en proceso, el inquilino ya no puede tocar nada.
	body = jsonBody(t, map[string]interface{}{"amount": 999.0})
	req = conActor(httptest.NewRequest(http.MethodPut, "/api/payments/"+p.ID, body), 20, permisos.RolInquilino)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec = httptest.NewRecorder()
	h.Actualizar(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	require.NoError(t, db.First(&guardado, "id = ?", p.ID).Error)
	assert.EqualValues(t, 500, guardado.Monto)
}

func TestListarScopingPorRol(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	propia := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	ajena := crearPropiedad(t, db, ptrUint(11), ptrUint(21))
	crearPago(t, db, propia, EstadoPendiente, 100)
	crearPago(t, db, propia, EstadoPagado, 200)
	crearPago(t, db, ajena, EstadoPendiente, 300)

	listar := func(id uint, rol permisos.Rol) (int, []Pago) {
		req := conActor(httptest.NewRequest(http.MethodGet, "/api/payments", nil), id, rol)
		rec := httptest.NewRecorder()
		h.Listar(rec, req)
		var resp struct {
			Payments []Pago `json:"payments"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec.Code, resp.Payments
	}

	code, pagos := listar(1, permisos.RolAdmin)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, pagos, 3)

	code, pagos = listar(10, permisos.RolPropietario)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, pagos, 2)

	code, pagos = listar(21, permisos.RolInquilino)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, pagos, 1)

	code, _ = listar(99, permisos.RolInvitado)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestEstadisticasAcotadasAlActor(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	propia := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	ajena := crearPropiedad(t, db, ptrUint(11), ptrUint(21))

	pagado := crearPago(t, db, propia, EstadoPagado, 400)
	ahora := time.Now()
	require.NoError(t, db.Model(pagado).Update("fecha_pago", &ahora).Error)
	crearPago(t, db, propia, EstadoPendiente, 150)
	crearPago(t, db, propia, EstadoVencido, 75)
	crearPago(t, db, ajena, EstadoPagado, 9999)

	req := conActor(httptest.NewRequest(http.MethodGet, "/api/payments/stats", nil), 10, permisos.RolPropietario)
	rec := httptest.NewRecorder()
	h.Estadisticas(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats EstadisticasDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 400, stats.TotalPagado)
	assert.EqualValues(t, 150, stats.TotalPendiente)
	assert.EqualValues(t, 75, stats.TotalVencido)
	assert.EqualValues(t, 400, stats.PagadoEsteMes)
}

func TestProximosSoloPendientesEnVentana(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))

	cercano := crearPago(t, db, prop, EstadoPendiente, 100)
	require.NoError(t, db.Model(cercano).Update("fecha_vencimiento", time.Now().AddDate(0, 0, 3)).Error)
	lejano := crearPago(t, db, prop, EstadoPendiente, 200)
	require.NoError(t, db.Model(lejano).Update("fecha_vencimiento", time.Now().AddDate(0, 0, 30)).Error)
	pagado := crearPago(t, db, prop, EstadoPagado, 300)
	require.NoError(t, db.Model(pagado).Update("fecha_vencimiento", time.Now().AddDate(0, 0, 3)).Error)

	req := conActor(httptest.NewRequest(http.MethodGet, "/api/payments/upcoming?days=7", nil), 10, permisos.RolPropietario)
	rec := httptest.NewRecorder()
	h.Proximos(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Payments []Pago `json:"payments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, cercano.ID, resp.Payments[0].ID)
}

func TestEliminarSoloAdmin(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	p := crearPago(t, db, prop, EstadoPendiente, 500)

	req := conActor(httptest.NewRequest(http.MethodDelete, "/api/payments/"+p.ID, nil), 10, permisos.RolPropietario)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec := httptest.NewRecorder()
	h.Eliminar(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = conActor(httptest.NewRequest(http.MethodDelete, "/api/payments/"+p.ID, nil), 1, permisos.RolAdmin)
	req = mux.SetURLVars(req, map[string]string{"id": p.ID})
	rec = httptest.NewRecorder()
	h.Eliminar(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var restantes int64
	require.NoError(t, db.Model(&Pago{}).Count(&restantes).Error)
	assert.EqualValues(t, 0, restantes)
}

func TestBuscarPorIDRespetaTitularidad(t *testing.T) {
	db := testDB(t)
	h := NewHandler(db, notificacion.NewService(db, zap.NewNop()))
	prop := crearPropiedad(t, db, ptrUint(10), ptrUint(20))
	p := crearPago(t, db, prop, EstadoPendiente, 500)

	buscar := func(id uint, rol permisos.Rol) int {
		req := conActor(httptest.NewRequest(http.MethodGet, "/api/payments/"+p.ID, nil), id, rol)
		req = mux.SetURLVars(req, map[string]string{"id": p.ID})
		rec := httptest.NewRecorder()
		h.BuscarPorID(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, buscar(1, permisos.RolAdmin))
	assert.Equal(t, http.StatusOK, buscar(10, permisos.RolPropietario))
	assert.Equal(t, http.StatusOK, buscar(20, permisos.RolInquilino))
	assert.Equal(t, http.StatusForbidden, buscar(11, permisos.RolPropietario))
	assert.Equal(t, http.StatusForbidden, buscar(21, permisos.RolInquilino))
}
