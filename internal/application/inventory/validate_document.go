package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

const tracerName = "github.com/jhoicas/stockmaster-api/internal/application/inventory"

// ValidateDocumentUseCase motor de validación: aplica un documento sobre el stock dentro de una
// única transacción, agrega los movimientos y deja el documento en DONE. Si algo falla no queda
// ningún cambio (stock, movimientos ni estado).
type ValidateDocumentUseCase struct {
	txRunner TxRunner
	cache    StockCache
	log      *logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewValidateDocumentUseCase construye el caso de uso. cache y log pueden ser nil.
func NewValidateDocumentUseCase(txRunner TxRunner, cache StockCache, log *logger.Logger) *ValidateDocumentUseCase {
	if cache == nil {
		cache = NopStockCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ValidateDocumentUseCase{
		txRunner: txRunner,
		cache:    cache,
		log:      log.Named("validate_document"),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
}

// Validate valida el documento documentID en nombre de userID.
func (uc *ValidateDocumentUseCase) Validate(ctx context.Context, documentID, userID string) (*entity.Document, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.ValidateDocument",
		trace.WithAttributes(attribute.String("document.id", documentID)))
	defer span.End()

	var (
		validated *entity.Document
		touched   []entity.StockKey
	)
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		stockRepo repository.StockRepository,
		moveRepo repository.StockMoveRepository,
	) error {
		doc, err := docRepo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		switch doc.Status {
		case entity.DocumentStatusDone:
			return domain.ErrAlreadyValidated
		case entity.DocumentStatusCanceled:
			return domain.ErrDocumentCanceled
		}
		span.SetAttributes(attribute.String("document.type", string(doc.Type)), attribute.Int("document.lines", len(doc.Lines)))

		handler, err := handlerFor(doc.Type)
		if err != nil {
			return err
		}

		now := uc.now().UTC()
		ledger := NewStockLedger(stockRepo)
		moves, err := handler(ctx, ledger, doc, moveBuilder{documentID: doc.ID, userID: userID, at: now})
		if err != nil {
			return err
		}
		if err := moveRepo.CreateBatch(ctx, moves); err != nil {
			return fmt.Errorf("append stock moves: %w", err)
		}
		doc.MarkDone(userID, now)
		if err := docRepo.Complete(ctx, doc); err != nil {
			return fmt.Errorf("complete document: %w", err)
		}
		validated = doc
		touched = ledger.Touched()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.logFailure(documentID, userID, err)
		return nil, err
	}

	if err := uc.cache.Invalidate(ctx, touched...); err != nil {
		uc.log.Warn().Err(err).Str("document_id", documentID).Msg("no se pudo invalidar caché de stock")
	}
	uc.log.Info().
		Str("document_id", validated.ID).
		Str("type", string(validated.Type)).
		Str("user_id", userID).
		Int("lines", len(validated.Lines)).
		Msg("documento validado")
	return validated, nil
}

func (uc *ValidateDocumentUseCase) logFailure(documentID, userID string, err error) {
	var ev = uc.log.Error()
	if isBusinessRejection(err) {
		ev = uc.log.Warn()
	}
	ev.Err(err).Str("document_id", documentID).Str("user_id", userID).Msg("validación rechazada")
}

// isBusinessRejection distingue reglas de negocio de fallas de infraestructura.
func isBusinessRejection(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrAlreadyValidated,
		domain.ErrDocumentCanceled,
		domain.ErrMissingWarehouse,
		domain.ErrSameWarehouse,
		domain.ErrInsufficientStock,
		domain.ErrUnknownDocumentType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
