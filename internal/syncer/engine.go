package syncer

import (
	"context"
	"fmt"

	"dropsync/internal/logger"
	"dropsync/internal/services/shopify"
)

// Catalog is the GraphQL surface the engine enumerates and mutates.
type Catalog interface {
	ListActiveProducts(ctx context.Context, first int, after string) (*shopify.ProductPage, error)
	IsPublished(ctx context.Context, productID, publicationID string) (bool, error)
	PublishProduct(ctx context.Context, productID, publicationID string) (shopify.PublishStatus, error)
}

// LegacyCatalog is the REST read/update pair used by the content-repair
// path.
type LegacyCatalog interface {
	GetProduct(ctx context.Context, productID string) (*shopify.Product, error)
	UpdateDescription(ctx context.Context, productID, bodyHTML string) error
}

// Pacer matches supplier.Pacer; redeclared here so the engine does not
// depend on the supplier package for pacing alone.
type Pacer interface {
	Pause(ctx context.Context) error
}

const defaultPageSize = 50

// Engine runs bulk catalog operations over one shared cursor-pagination
// skeleton. Mutations are paced; reads are not.
type Engine struct {
	catalog       Catalog
	legacy        LegacyCatalog
	publicationID string
	pageSize      int
	mutatePacer   Pacer
	logger        *logger.Logger
}

func NewEngine(catalog Catalog, legacy LegacyCatalog, publicationID string, mutatePacer Pacer, log *logger.Logger) *Engine {
	return &Engine{
		catalog:       catalog,
		legacy:        legacy,
		publicationID: publicationID,
		pageSize:      defaultPageSize,
		mutatePacer:   mutatePacer,
		logger:        log,
	}
}

// Enumerate walks active products cursor by cursor and feeds each one to
// fn. Cursors are opaque platform tokens: only the most recent one is
// threaded forward, never parsed. A limit of zero means the whole catalog;
// partial pages are normal, only hasNextPage ends the walk.
func (e *Engine) Enumerate(ctx context.Context, limit int, fn func(shopify.ProductSummary) error) error {
	cursor := ""
	seen := 0
	for {
		first := e.pageSize
		if limit > 0 && limit-seen < first {
			first = limit - seen
		}
		if first <= 0 {
			return nil
		}

		page, err := e.catalog.ListActiveProducts(ctx, first, cursor)
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}

		for _, product := range page.Products {
			if limit > 0 && seen >= limit {
				return nil
			}
			seen++
			if err := fn(product); err != nil {
				return err
			}
		}

		if !page.HasNextPage {
			return nil
		}
		cursor = page.EndCursor
	}
}

// PublishSweep puts every enumerated product on the storefront publication
// unless it is already there. An "already published" user-error counts as
// satisfied; a permission error aborts the whole run since no later item
// could succeed either.
func (e *Engine) PublishSweep(ctx context.Context, run *Run, limit int) error {
	run.Enumerating()
	mutations := 0

	err := e.Enumerate(ctx, limit, func(product shopify.ProductSummary) error {
		run.Processing()

		published, err := e.catalog.IsPublished(ctx, product.ID, e.publicationID)
		if err != nil {
			run.RecordFailure(product.ID, err)
			if IsFatal(err) {
				return err
			}
			return nil
		}
		if published {
			run.RecordAlreadyDone(product.ID)
			return nil
		}

		if run.DryRun {
			e.logger.Info("dry-run: would publish %s (%s) to %s", product.ID, product.Title, e.publicationID)
			run.RecordSuccess(product.ID)
			return nil
		}

		if mutations > 0 {
			if err := e.mutatePacer.Pause(ctx); err != nil {
				return err
			}
		}
		mutations++

		status, err := e.catalog.PublishProduct(ctx, product.ID, e.publicationID)
		if err != nil {
			run.RecordFailure(product.ID, err)
			if IsFatal(err) {
				return err
			}
			return nil
		}
		if status == shopify.StatusAlreadyPublished {
			run.RecordAlreadyDone(product.ID)
		} else {
			run.RecordSuccess(product.ID)
		}
		return nil
	})
	return err
}

// PublicationAudit reports which products are on the storefront channel
// without mutating anything. Off-channel products land in the succeeded
// counter (work identified), on-channel ones in already-done.
func (e *Engine) PublicationAudit(ctx context.Context, run *Run, limit int) error {
	run.Enumerating()

	return e.Enumerate(ctx, limit, func(product shopify.ProductSummary) error {
		run.Processing()

		published, err := e.catalog.IsPublished(ctx, product.ID, e.publicationID)
		if err != nil {
			run.RecordFailure(product.ID, err)
			if IsFatal(err) {
				return err
			}
			return nil
		}
		if published {
			e.logger.Debug("on channel: %s (%s)", product.ID, product.Handle)
			run.RecordAlreadyDone(product.ID)
		} else {
			e.logger.Info("NOT on channel: %s (%s)", product.ID, product.Handle)
			run.RecordSuccess(product.ID)
		}
		return nil
	})
}

// RepairDescriptions fixes the doubled-phrase defect on every enumerated
// product. The corrected text is always computed and logged; the REST
// mutation only fires outside dry-run, and only for the description field.
func (e *Engine) RepairDescriptions(ctx context.Context, run *Run, limit int) error {
	run.Enumerating()
	mutations := 0

	return e.Enumerate(ctx, limit, func(product shopify.ProductSummary) error {
		run.Processing()

		// Cheap prefilter on the enumerated text; the GraphQL and REST
		// renderings of a description can differ in entity encoding, so
		// the authoritative body is re-read over REST before mutating.
		if !NeedsRepair(product.Description) {
			run.RecordAlreadyDone(product.LegacyID)
			return nil
		}

		legacy, err := e.legacy.GetProduct(ctx, product.LegacyID)
		if err != nil {
			run.RecordFailure(product.LegacyID, err)
			if IsFatal(err) {
				return err
			}
			return nil
		}
		if !NeedsRepair(legacy.BodyHTML) {
			run.RecordAlreadyDone(product.LegacyID)
			return nil
		}

		fixed := RepairDescription(legacy.BodyHTML)
		e.logger.Info("repairing %s (%s): %d -> %d chars",
			product.LegacyID, product.Handle, len(legacy.BodyHTML), len(fixed))

		if run.DryRun {
			run.RecordSuccess(product.LegacyID)
			return nil
		}

		if mutations > 0 {
			if err := e.mutatePacer.Pause(ctx); err != nil {
				return err
			}
		}
		mutations++

		if err := e.legacy.UpdateDescription(ctx, product.LegacyID, fixed); err != nil {
			run.RecordFailure(product.LegacyID, err)
			if IsFatal(err) {
				return err
			}
			return nil
		}
		run.RecordSuccess(product.LegacyID)
		return nil
	})
}
