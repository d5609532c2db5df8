package salidas

import (
	"regexp"
	"strconv"

	"github.com/medsalud/almacen-api/internal/domain"
	"github.com/medsalud/almacen-api/internal/domain/repository"
)

// Tipo de movimiento que gobierna el consecutivo de este módulo.
const TipoMovimientoSalida = "salida"

// MaxFolioDigits tope de dígitos de un folio numérico: debe caber en un
// bigint para el ordenamiento y la reconciliación en SQL.
const MaxFolioDigits = 18

// patrón de folio puramente numérico; los códigos manuales que no lo cumplen
// quedan fuera del consecutivo y nunca interfieren con él.
var numericFolioRe = regexp.MustCompile(`^[0-9]+$`)

// IsNumericFolio reporta si el folio participa del consecutivo numérico.
func IsNumericFolio(folio string) bool {
	return numericFolioRe.MatchString(folio)
}

// folioAsignado resultado de reservar o aceptar un folio dentro de la tx.
type folioAsignado struct {
	Folio string
	Serie string
	// RebasaConsecutivo: folio manual numérico que alcanza o supera el
	// contador; obliga a reconciliar después del commit.
	RebasaConsecutivo bool
}

// reserveOrAcceptFolio reserva el siguiente folio del consecutivo o acepta
// el folio manual del request. La reserva avanza el contador dentro de la
// transacción dueña: un rollback la libera. El folio manual no incrementa
// el contador como efecto secundario.
func reserveOrAcceptFolio(
	folioRepo repository.FolioRepository,
	manual, serie string,
) (folioAsignado, error) {
	if manual != "" {
		if IsNumericFolio(manual) && len(manual) > MaxFolioDigits {
			return folioAsignado{}, domain.Validationf(
				"el folio numérico %q excede los %d dígitos soportados", manual, MaxFolioDigits)
		}
		out := folioAsignado{Folio: manual, Serie: serie}
		if IsNumericFolio(manual) {
			cfg, err := folioRepo.GetConfig(TipoMovimientoSalida)
			if err != nil {
				return folioAsignado{}, err
			}
			if n, err := strconv.ParseInt(manual, 10, 64); err == nil && cfg != nil && n >= cfg.ProximoFolio {
				out.RebasaConsecutivo = true
			}
		}
		return out, nil
	}

	cfg, err := folioRepo.GetConfigForUpdate(TipoMovimientoSalida)
	if err != nil {
		return folioAsignado{}, err
	}
	if cfg == nil {
		return folioAsignado{}, domain.Validationf("no hay configuración de folios para el tipo %q", TipoMovimientoSalida)
	}
	candidato := cfg.ProximoFolio
	if serie == "" {
		serie = cfg.SerieActual
	}
	if err := folioRepo.AdvanceTo(TipoMovimientoSalida, candidato+1); err != nil {
		return folioAsignado{}, err
	}
	return folioAsignado{Folio: strconv.FormatInt(candidato, 10), Serie: serie}, nil
}

// Reconcile repara el consecutivo: recalcula el máximo folio numérico real
// de la serie y sube el contador a max(actual, realMax+1). Es una función
// pura y monótona del estado de la tabla: llamarla dos veces sin escrituras
// intermedias no cambia nada, y bajo concurrencia el valor final nunca
// decrece sin importar el orden de ejecución.
func (uc *UseCase) Reconcile(serie string) error {
	realMax, err := uc.salidaRepo.MaxNumericFolio(serie)
	if err != nil {
		return err
	}
	return uc.folioRepo.AdvanceTo(TipoMovimientoSalida, realMax+1)
}

// reconcileAfterCommit ejecuta Reconcile como reparación secundaria: si
// falla tras un commit exitoso solo se registra en el log; la corrección del
// movimiento no depende de que la reconciliación tenga éxito inmediato.
func (uc *UseCase) reconcileAfterCommit(serie string) {
	if err := uc.Reconcile(serie); err != nil {
		uc.log.Warn().Err(err).
			Str("tipo", TipoMovimientoSalida).
			Str("serie", serie).
			Msg("reconciliación de folios falló; se reintentará en la próxima mutación")
	}
}
