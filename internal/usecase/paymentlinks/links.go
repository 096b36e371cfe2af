package paymentlinks

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/storage"
	"github.com/BruksfildServices01/barberbook/internal/validators"
)

var platforms = map[string]bool{
	"cashapp":     true,
	"paypal":      true,
	"venmo":       true,
	"pix":         true,
	"mercadopago": true,
	"other":       true,
}

type Repository interface {
	List(ctx context.Context) ([]models.PaymentLink, error)
	Find(ctx context.Context, id uuid.UUID) (*models.PaymentLink, error)
	Insert(ctx context.Context, l *models.PaymentLink) error
	Update(ctx context.Context, l *models.PaymentLink) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Input describes a link shown to clients at checkout. QRImage is optional.
type Input struct {
	Label    string
	Platform string
	URL      string
	QRImage  []byte
}

type Service struct {
	repo   Repository
	images storage.PhotoStore
	audit  *audit.Dispatcher
	log    *zap.Logger
}

func New(repo Repository, images storage.PhotoStore, audit *audit.Dispatcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, images: images, audit: audit, log: log}
}

func (s *Service) List(ctx context.Context) ([]models.PaymentLink, error) {
	links, err := s.repo.List(ctx)
	if err != nil {
		return nil, httperr.Persist("payment_links_list_failed", err)
	}
	return links, nil
}

func normalize(in Input) (label, platform, url string, err error) {
	label, ok := validators.Name(in.Label)
	if !ok {
		return "", "", "", httperr.ErrValidation("invalid_label")
	}

	platform = strings.ToLower(strings.TrimSpace(in.Platform))
	if platform == "" {
		platform = "other"
	}
	if !platforms[platform] {
		return "", "", "", httperr.ErrValidation("invalid_platform")
	}

	url = strings.TrimSpace(in.URL)
	if !validators.IsLinkURL(url) {
		return "", "", "", httperr.ErrValidation("invalid_url")
	}
	return label, platform, url, nil
}

func (s *Service) Create(ctx context.Context, in Input, userID *uuid.UUID) (*models.PaymentLink, error) {
	label, platform, url, err := normalize(in)
	if err != nil {
		return nil, err
	}

	l := &models.PaymentLink{Label: label, Platform: platform, URL: url}

	if len(in.QRImage) > 0 {
		if l.QRImageRef, err = s.saveImage(ctx, in.QRImage); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Insert(ctx, l); err != nil {
		s.deleteImage(ctx, l.QRImageRef)
		return nil, httperr.ErrPersistence("payment_link_not_saved", err)
	}

	s.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   "payment_link_created",
		Entity:   "payment_link",
		EntityID: l.ID.String(),
		Metadata: map[string]any{"platform": platform},
	})
	return l, nil
}

// Update replaces the link. A new QR image replaces the old one; without
// one the current image is kept.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input, userID *uuid.UUID) (*models.PaymentLink, error) {
	l, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	label, platform, url, err := normalize(in)
	if err != nil {
		return nil, err
	}
	l.Label, l.Platform, l.URL = label, platform, url

	oldRef := ""
	if len(in.QRImage) > 0 {
		ref, err := s.saveImage(ctx, in.QRImage)
		if err != nil {
			return nil, err
		}
		oldRef, l.QRImageRef = l.QRImageRef, ref
	}

	if err := s.repo.Update(ctx, l); err != nil {
		if oldRef != "" {
			s.deleteImage(ctx, l.QRImageRef)
		}
		return nil, httperr.ErrPersistence("payment_link_not_saved", err)
	}
	s.deleteImage(ctx, oldRef)

	s.audit.Dispatch(audit.Event{UserID: userID, Action: "payment_link_updated", Entity: "payment_link", EntityID: l.ID.String()})
	return l, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	l, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return httperr.Persist("payment_link_not_deleted", err)
	}
	s.deleteImage(ctx, l.QRImageRef)

	s.audit.Dispatch(audit.Event{UserID: userID, Action: "payment_link_deleted", Entity: "payment_link", EntityID: id.String()})
	return nil
}

func (s *Service) saveImage(ctx context.Context, data []byte) (string, error) {
	if s.images == nil {
		return "", httperr.ErrValidation("images_disabled")
	}
	ref, err := s.images.Save(ctx, "qr", data)
	if errors.Is(err, storage.ErrNotAnImage) {
		return "", httperr.ErrValidation("invalid_image")
	}
	if err != nil {
		return "", httperr.ErrPersistence("image_not_saved", err)
	}
	return ref, nil
}

func (s *Service) deleteImage(ctx context.Context, ref string) {
	if ref == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		s.log.Warn("qr image delete failed", zap.String("ref", ref), zap.Error(err))
	}
}
