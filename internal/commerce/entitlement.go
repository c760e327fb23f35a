package commerce

import (
	"math"
	"time"
)

// DefaultWarningDays es el umbral por defecto para avisar del vencimiento
const DefaultWarningDays = 7

// Entitlement resume el estado de una suscripción en un instante dado
type Entitlement struct {
	DaysRemaining int
	Expired       bool
	ExpiresSoon   bool
}

// EvaluateEntitlement calcula días restantes, vencimiento y aviso.
// Los días se redondean hacia arriba: faltando 1 hora queda 1 día.
func EvaluateEntitlement(expiresAt, now time.Time, warningDays int) Entitlement {
	days := int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
	expired := days < 0
	return Entitlement{
		DaysRemaining: days,
		Expired:       expired,
		ExpiresSoon:   !expired && days <= warningDays,
	}
}
