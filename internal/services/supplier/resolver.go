package supplier

import (
	"context"
	"errors"

	"dropsync/internal/logger"
)

// ProbeOutcome classifies one availability attempt.
type ProbeOutcome string

const (
	ProbeFound     ProbeOutcome = "found"
	ProbeRejected  ProbeOutcome = "rejected"
	ProbeTransport ProbeOutcome = "transport_error"
)

// Probe records one (product, country) availability attempt.
type Probe struct {
	ProductID    string       `json:"product_id"`
	Country      string       `json:"country"`
	Outcome      ProbeOutcome `json:"outcome"`
	Code         string       `json:"code,omitempty"`
	Message      string       `json:"message,omitempty"`
	Title        string       `json:"title,omitempty"`
	ImageCount   int          `json:"image_count,omitempty"`
	VariantCount int          `json:"variant_count,omitempty"`
}

// Resolution is the terminal outcome of resolving one product. A nil
// Listing with attempts means every candidate country was rejected; that
// is a legitimate result ("no EU warehouse serves this product"), not an
// error.
type Resolution struct {
	Listing  *Listing `json:"listing,omitempty"`
	Attempts []Probe  `json:"attempts"`
}

func (r *Resolution) Found() bool {
	return r.Listing != nil
}

// Pacer enforces the minimum delay between consecutive supplier calls.
// The delay value is owned by the run controller, not the resolver: the
// supplier throttles bursts, and probing and mutating need different
// intervals.
type Pacer interface {
	Pause(ctx context.Context) error
}

type productQuerier interface {
	QueryProduct(ctx context.Context, productID, country, currency, language string) (*Listing, error)
}

// Resolver probes candidate ship-to countries in priority order until one
// serves the product.
type Resolver struct {
	client    productQuerier
	countries []string
	currency  string
	language  string
	pacer     Pacer
	logger    *logger.Logger
}

func NewResolver(client productQuerier, countries []string, currency, language string, pacer Pacer, logger *logger.Logger) *Resolver {
	return &Resolver{
		client:    client,
		countries: countries,
		currency:  currency,
		language:  language,
		pacer:     pacer,
		logger:    logger,
	}
}

// Resolve tries each candidate country in list order and stops at the
// first success. Every attempt is recorded for diagnostics. Terminal
// supplier errors and auth expiry abort resolution; a fully rejected list
// yields an exhausted Resolution with a nil error.
func (r *Resolver) Resolve(ctx context.Context, productID string) (*Resolution, error) {
	attempts := make([]Probe, 0, len(r.countries))

	for i, country := range r.countries {
		if i > 0 {
			if err := r.pacer.Pause(ctx); err != nil {
				return nil, err
			}
		}

		listing, err := r.client.QueryProduct(ctx, productID, country, r.currency, r.language)
		if err == nil {
			attempts = append(attempts, Probe{
				ProductID:    productID,
				Country:      country,
				Outcome:      ProbeFound,
				Title:        listing.Title,
				ImageCount:   listing.ImageCount,
				VariantCount: listing.VariantCount,
			})
			r.logger.Info("product %s available from %s (%d images, %d variants)",
				productID, country, listing.ImageCount, listing.VariantCount)
			return &Resolution{Listing: listing, Attempts: attempts}, nil
		}

		if errors.Is(err, ErrAuthExpired) {
			return nil, err
		}

		if se, ok := AsSupplierError(err); ok {
			if se.Terminal() {
				return nil, err
			}
			attempts = append(attempts, Probe{
				ProductID: productID,
				Country:   country,
				Outcome:   ProbeRejected,
				Code:      se.Code,
				Message:   se.Message,
			})
			r.logger.Debug("product %s rejected for %s: %s", productID, country, se.Code)
			continue
		}

		attempts = append(attempts, Probe{
			ProductID: productID,
			Country:   country,
			Outcome:   ProbeTransport,
			Message:   err.Error(),
		})
		r.logger.Warn("probe %s/%s transport failure: %v", productID, country, err)
	}

	return &Resolution{Attempts: attempts}, nil
}
