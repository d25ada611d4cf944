package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio genéricos (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrUsernameAlreadyExists = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrCannotDeleteSelf      = errors.New("un usuario no puede eliminarse a sí mismo")
)

// ErrorKey código máquina de un rechazo del libro de stock. El texto visible lo arma el cliente (i18n).
type ErrorKey string

// Claves reconocidas por los clientes.
const (
	KeyArticleCodeExists         ErrorKey = "ARTICLE_CODE_EXISTS"
	KeyArticleNameUnitExists     ErrorKey = "ARTICLE_NAME_UNIT_EXISTS"
	KeyArticleNotFound           ErrorKey = "ARTICLE_NOT_FOUND"
	KeyArticleInUse              ErrorKey = "ARTICLE_IN_USE"
	KeyMovementNotFound          ErrorKey = "MOVEMENT_NOT_FOUND"
	KeyInsufficientStock         ErrorKey = "INSUFFICIENT_STOCK"
	KeyInsufficientStockOnDelete ErrorKey = "INSUFFICIENT_STOCK_ON_DELETE"
	KeyCategoryInUse             ErrorKey = "CATEGORY_IN_USE"
	KeySupplierInUse             ErrorKey = "SUPPLIER_IN_USE"
	KeyDestinationInUse          ErrorKey = "DESTINATION_IN_USE"
	KeySubcategoryInUse          ErrorKey = "SUBCATEGORY_IN_USE"
	KeyInvalidMovement           ErrorKey = "INVALID_MOVEMENT"
	KeyInvalidArticle            ErrorKey = "INVALID_ARTICLE"
	KeyInvalidSettingsList       ErrorKey = "INVALID_SETTINGS_LIST"
)

// ErrorClass taxonomía de rechazos: decide cómo se recupera el cliente (y el status HTTP).
type ErrorClass string

const (
	ClassUniqueness  ErrorClass = "uniqueness"
	ClassBalance     ErrorClass = "balance"
	ClassReferential ErrorClass = "referential"
	ClassNotFound    ErrorClass = "not_found"
	ClassInvalid     ErrorClass = "invalid"
)

var keyClasses = map[ErrorKey]ErrorClass{
	KeyArticleCodeExists:         ClassUniqueness,
	KeyArticleNameUnitExists:     ClassUniqueness,
	KeyArticleNotFound:           ClassNotFound,
	KeyMovementNotFound:          ClassNotFound,
	KeyInsufficientStock:         ClassBalance,
	KeyInsufficientStockOnDelete: ClassBalance,
	KeyArticleInUse:              ClassReferential,
	KeyCategoryInUse:             ClassReferential,
	KeySupplierInUse:             ClassReferential,
	KeyDestinationInUse:          ClassReferential,
	KeySubcategoryInUse:          ClassReferential,
	KeyInvalidMovement:           ClassInvalid,
	KeyInvalidArticle:            ClassInvalid,
	KeyInvalidSettingsList:       ClassInvalid,
}

// LedgerError rechazo tipado del protocolo de mutación: clave + parámetros de interpolación.
// Nunca lleva un mensaje humano armado.
type LedgerError struct {
	Key    ErrorKey
	Params map[string]any
}

// NewLedgerError construye el error; params puede ser nil.
func NewLedgerError(key ErrorKey, params map[string]any) *LedgerError {
	return &LedgerError{Key: key, Params: params}
}

func (e *LedgerError) Error() string {
	if len(e.Params) == 0 {
		return fmt.Sprintf("ledger: %s", e.Key)
	}
	return fmt.Sprintf("ledger: %s %v", e.Key, e.Params)
}

// Is compara por clave, de modo que errors.Is(err, domain.ErrInsufficientStock) funciona con cualquier params.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	return ok && t.Key == e.Key
}

// Class devuelve la clase del rechazo.
func (e *LedgerError) Class() ErrorClass {
	if c, ok := keyClasses[e.Key]; ok {
		return c
	}
	return ClassInvalid
}

// Centinelas para errors.Is (sin params).
var (
	ErrArticleCodeExists         = &LedgerError{Key: KeyArticleCodeExists}
	ErrArticleNameUnitExists     = &LedgerError{Key: KeyArticleNameUnitExists}
	ErrArticleNotFound           = &LedgerError{Key: KeyArticleNotFound}
	ErrArticleInUse              = &LedgerError{Key: KeyArticleInUse}
	ErrMovementNotFound          = &LedgerError{Key: KeyMovementNotFound}
	ErrInsufficientStock         = &LedgerError{Key: KeyInsufficientStock}
	ErrInsufficientStockOnDelete = &LedgerError{Key: KeyInsufficientStockOnDelete}
	ErrCategoryInUse             = &LedgerError{Key: KeyCategoryInUse}
	ErrSupplierInUse             = &LedgerError{Key: KeySupplierInUse}
	ErrDestinationInUse          = &LedgerError{Key: KeyDestinationInUse}
	ErrSubcategoryInUse          = &LedgerError{Key: KeySubcategoryInUse}
	ErrInvalidMovement           = &LedgerError{Key: KeyInvalidMovement}
	ErrInvalidArticle            = &LedgerError{Key: KeyInvalidArticle}
	ErrInvalidSettingsList       = &LedgerError{Key: KeyInvalidSettingsList}
)

// AsLedgerError extrae el *LedgerError de una cadena de errores.
func AsLedgerError(err error) (*LedgerError, bool) {
	var le *LedgerError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
