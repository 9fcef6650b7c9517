package errx

import (
	"fmt"
	"net/http"
)

// Type clasifica un error para el manejo HTTP y de negocio
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeBusiness      Type = "BUSINESS"
	TypeExternal      Type = "EXTERNAL"
	TypeInternal      Type = "INTERNAL"
)

// Error es el error estándar de la aplicación
type Error struct {
	Type       Type           `json:"type"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"status"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail agrega un detalle al error (chainable)
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause adjunta el error subyacente
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Wrap envuelve un error externo en un *Error
func Wrap(err error, message string, t Type) *Error {
	return &Error{
		Type:       t,
		Code:       string(t) + "_ERROR",
		Message:    message,
		HTTPStatus: statusFor(t),
		Err:        err,
	}
}

// New crea un error ad-hoc sin registro
func New(message string, t Type) *Error {
	return &Error{
		Type:       t,
		Code:       string(t) + "_ERROR",
		Message:    message,
		HTTPStatus: statusFor(t),
	}
}

func statusFor(t Type) int {
	switch t {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeAuthorization:
		return http.StatusForbidden
	case TypeBusiness:
		return http.StatusUnprocessableEntity
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Registry - catálogo de errores por dominio
// ============================================================================

// Code identifica un error registrado
type Code string

type definition struct {
	code    Code
	errType Type
	status  int
	message string
}

// Registry agrupa las definiciones de error de un dominio bajo un prefijo
type Registry struct {
	prefix      string
	definitions map[Code]definition
}

// NewRegistry crea un registro de errores con el prefijo dado
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:      prefix,
		definitions: make(map[Code]definition),
	}
}

// Register registra una definición de error y retorna su código
func (r *Registry) Register(code string, t Type, httpStatus int, message string) Code {
	full := Code(r.prefix + "_" + code)
	r.definitions[full] = definition{
		code:    full,
		errType: t,
		status:  httpStatus,
		message: message,
	}
	return full
}

// New construye un *Error a partir de un código registrado
func (r *Registry) New(code Code) *Error {
	def, ok := r.definitions[code]
	if !ok {
		return &Error{
			Type:       TypeInternal,
			Code:       string(code),
			Message:    "unknown error code",
			HTTPStatus: http.StatusInternalServerError,
		}
	}
	return &Error{
		Type:       def.errType,
		Code:       string(def.code),
		Message:    def.message,
		HTTPStatus: def.status,
	}
}

// NewWithMessage construye un *Error con un mensaje sobreescrito
func (r *Registry) NewWithMessage(code Code, message string) *Error {
	e := r.New(code)
	e.Message = message
	return e
}

// IsCode reporta si err es un *Error con el código dado
func IsCode(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == string(code)
}

// IsType reporta si err es un *Error del tipo dado
func IsType(err error, t Type) bool {
	e, ok := err.(*Error)
	return ok && e.Type == t
}
