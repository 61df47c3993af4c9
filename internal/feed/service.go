package feed

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/supplydesk/supplydesk-backend/internal/catalog"
	dbpkg "github.com/supplydesk/supplydesk-backend/pkg/db"
	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	"github.com/supplydesk/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
	"github.com/supplydesk/supplydesk-backend/pkg/logger"
	"github.com/supplydesk/supplydesk-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// IngestSummary reports what a successful ingest replaced.
type IngestSummary struct {
	ShopID     uint   `json:"shop_id"`
	Shop       string `json:"shop"`
	Categories int    `json:"categories"`
	Listings   int    `json:"listings"`
}

// Service ingests supplier price lists into the catalog.
type Service interface {
	IngestFromURL(ctx context.Context, userID uint, rawURL string) (*IngestSummary, error)
}

type service struct {
	repo    catalog.CatalogRepository
	tx      txRunner
	fetcher Fetcher
	events  eventEmitter
	logg    *logger.Logger
}

// NewService builds a feed ingest service backed by the provided stack.
func NewService(repo catalog.CatalogRepository, tx txRunner, fetcher Fetcher, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{repo: repo, tx: tx, fetcher: fetcher, events: events, logg: logg}, nil
}

// IngestFromURL downloads, validates and applies a price list. The shop's
// listings are replaced wholesale in a single transaction: either the new
// catalog lands completely or the previous one stays untouched.
func (s *service) IngestFromURL(ctx context.Context, userID uint, rawURL string) (*IngestSummary, error) {
	if userID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := validateFeedURL(rawURL); err != nil {
		return nil, err
	}

	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(body)
	if err != nil {
		return nil, err
	}

	summary := &IngestSummary{Shop: doc.Shop, Categories: len(doc.Categories), Listings: len(doc.Goods)}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		shop, err := txRepo.GetOrCreateShop(ctx, doc.Shop, userID)
		if err != nil {
			return err
		}
		summary.ShopID = shop.ID

		for _, entry := range doc.Categories {
			category, err := txRepo.UpsertCategory(ctx, entry.ID, entry.Name)
			if err != nil {
				return err
			}
			if err := txRepo.LinkShopCategory(ctx, shop, category); err != nil {
				return err
			}
		}

		if err := txRepo.DeleteListingsByShop(ctx, shop.ID); err != nil {
			return err
		}

		for _, good := range doc.Goods {
			product, err := txRepo.GetOrCreateProduct(ctx, good.Name, good.Category)
			if err != nil {
				return err
			}

			params, err := buildParameters(ctx, txRepo, good.Parameters)
			if err != nil {
				return err
			}

			info := &models.ProductInfo{
				ProductID:  product.ID,
				ShopID:     shop.ID,
				ExternalID: good.ID,
				Model:      good.Model,
				Quantity:   good.Quantity,
				Price:      good.Price,
				PriceRRC:   good.PriceRRC,
				Parameters: params,
			}
			if _, err := txRepo.CreateListing(ctx, info); err != nil {
				return err
			}
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCatalogIngest,
			AggregateType: enums.AggregateShop,
			AggregateID:   shop.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Type: enums.UserTypeShop.String()},
			Data:          summary,
			Version:       1,
			OccurredAt:    time.Now(),
		})
	}); err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "price list conflicts with existing catalog")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply price list")
	}

	if s.logg != nil {
		fields := map[string]any{"shop_id": summary.ShopID, "listings": summary.Listings}
		s.logg.Info(s.logg.WithFields(ctx, fields), "price list ingested")
	}

	return summary, nil
}

func buildParameters(ctx context.Context, repo catalog.CatalogRepository, values map[string]any) ([]models.ProductParameter, error) {
	if len(values) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]models.ProductParameter, 0, len(names))
	for _, name := range names {
		parameter, err := repo.GetOrCreateParameter(ctx, name)
		if err != nil {
			return nil, err
		}
		params = append(params, models.ProductParameter{
			ParameterID: parameter.ID,
			Value:       fmt.Sprint(values[name]),
		})
	}
	return params, nil
}

func validateFeedURL(rawURL string) error {
	if rawURL == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "url is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return pkgerrors.New(pkgerrors.CodeValidation, "url scheme must be http or https")
	}
	if parsed.Host == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "url host is required")
	}
	return nil
}
