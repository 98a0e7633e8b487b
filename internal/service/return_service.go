package service

import (
	"context"
	"time"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
	"github.com/Jeng2004/t-double-project-sub000/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReturnItemInput struct {
	OrderItemID uuid.UUID
	Quantity    uint32
}

type CreateReturnInput struct {
	OrderID        *uuid.UUID
	SpecialOrderID *uuid.UUID
	Reason         string
	Images         []string
	Items          []ReturnItemInput
}

type ReturnService interface {
	Create(ctx context.Context, in CreateReturnInput) (*models.ReturnRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	List(ctx context.Context) ([]models.ReturnRequest, error)
	Review(ctx context.Context, id uuid.UUID, approve bool, adminNote *string) (*models.ReturnRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type returnService struct {
	repo       *repository.Repository
	tx         repository.TxManager
	gate       PaymentGate
	notifier   Notifier
	log        *zap.Logger
	windowDays int
	now        func() time.Time
}

func NewReturnService(repo *repository.Repository, tx repository.TxManager, gate PaymentGate, notifier Notifier, windowDays int, log *zap.Logger) ReturnService {
	return &returnService{
		repo:       repo,
		tx:         tx,
		gate:       gate,
		notifier:   notifier,
		log:        log,
		windowDays: windowDays,
		now:        time.Now,
	}
}

func (s *returnService) Create(ctx context.Context, in CreateReturnInput) (*models.ReturnRequest, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if len(in.Images) < 1 || len(in.Images) > 5 {
		return nil, ErrImagesInvalid
	}
	if (in.OrderID == nil) == (in.SpecialOrderID == nil) {
		return nil, ErrOrderNotFound
	}

	req := &models.ReturnRequest{
		UserID: userID,
		Status: models.ReturnStatusPending,
		Reason: in.Reason,
		Images: in.Images,
	}

	if in.OrderID != nil {
		ord, err := s.repo.Orders.GetByIDForUser(ctx, *in.OrderID, userID)
		if err != nil {
			return nil, err
		}
		if ord == nil {
			return nil, ErrOrderNotFound
		}
		if err := s.checkEligibility(ord.Status, ord.DeliveredAt); err != nil {
			return nil, err
		}
		if len(in.Items) == 0 {
			return nil, ErrQuantityInvalid
		}

		purchased := make(map[uuid.UUID]uint32, len(ord.Items))
		for _, it := range ord.Items {
			purchased[it.ID] = it.Quantity
		}
		for _, it := range in.Items {
			qty, ok := purchased[it.OrderItemID]
			if !ok {
				return nil, ErrOrderItemNotFound
			}
			if it.Quantity == 0 || it.Quantity > qty {
				return nil, ErrReturnQuantityInvalid
			}
			exists, err := s.repo.Returns.ExistsForOrderItem(ctx, it.OrderItemID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrReturnItemDuplicate
			}
			req.Items = append(req.Items, models.ReturnItem{
				OrderItemID: it.OrderItemID,
				Quantity:    it.Quantity,
			})
		}
		req.OrderID = in.OrderID
	} else {
		so, err := s.repo.Specials.GetByID(ctx, *in.SpecialOrderID)
		if err != nil {
			return nil, err
		}
		if so == nil {
			return nil, ErrSpecialOrderNotFound
		}
		if so.UserID != userID {
			return nil, ErrForbidden
		}
		if err := s.checkEligibility(so.Status, so.DeliveredAt); err != nil {
			return nil, err
		}
		req.SpecialOrderID = in.SpecialOrderID
	}

	if err := s.repo.Returns.Create(ctx, req); err != nil {
		return nil, err
	}
	return s.repo.Returns.GetByID(ctx, req.ID)
}

func (s *returnService) checkEligibility(status models.OrderStatus, deliveredAt *time.Time) error {
	if status != models.OrderStatusDelivered || deliveredAt == nil {
		return ErrReturnNotEligible
	}
	if s.now().After(deliveredAt.Add(time.Duration(s.windowDays) * 24 * time.Hour)) {
		return ErrReturnWindowClosed
	}
	return nil
}

func (s *returnService) Get(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.repo.Returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrReturnNotFound
	}
	if role != models.RoleAdmin && req.UserID != userID {
		return nil, ErrForbidden
	}
	return req, nil
}

// List returns the caller's requests; admins see every request so pending
// ones can be reviewed.
func (s *returnService) List(ctx context.Context) ([]models.ReturnRequest, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin {
		return s.repo.Returns.List(ctx, nil)
	}
	return s.repo.Returns.List(ctx, &userID)
}

// Review approves or rejects a pending return. Approval restocks the
// returned quantities; approved special-order returns are refunded through
// the gateway, best-effort.
func (s *returnService) Review(ctx context.Context, id uuid.UUID, approve bool, adminNote *string) (*models.ReturnRequest, error) {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	req, err := s.repo.Returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrReturnNotFound
	}
	if req.Status != models.ReturnStatusPending {
		return nil, ErrReturnAlreadyReviewed
	}

	status := models.ReturnStatusRejected
	if approve {
		status = models.ReturnStatusApproved
	}
	fields := map[string]any{"status": status}
	if adminNote != nil {
		fields["admin_note"] = *adminNote
	}

	if !approve {
		if err := s.repo.Returns.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
		s.notifyReviewed(ctx, id)
		return s.repo.Returns.GetByID(ctx, id)
	}

	if req.OrderID != nil {
		ord, err := s.repo.Orders.GetByID(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		if ord == nil {
			return nil, ErrOrderNotFound
		}
		byID := make(map[uuid.UUID]models.OrderItem, len(ord.Items))
		for _, it := range ord.Items {
			byID[it.ID] = it
		}

		err = s.tx.WithTx(func(tx *repository.Repository) error {
			if err := tx.Returns.UpdateFields(ctx, id, fields); err != nil {
				return err
			}
			for _, ri := range req.Items {
				oi, ok := byID[ri.OrderItemID]
				if !ok {
					return ErrOrderItemNotFound
				}
				ok2, err := tx.Variants.AdjustStock(ctx, oi.ProductID, oi.Size, int32(ri.Quantity))
				if err != nil {
					return err
				}
				if !ok2 {
					return ErrVariantNotFound
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.Returns.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
		so, err := s.repo.Specials.GetByID(ctx, *req.SpecialOrderID)
		if err == nil && so != nil && so.IsPaid && so.PaymentIntentID != nil {
			if _, err := s.gate.Refund(ctx, *so.PaymentIntentID, nil); err != nil {
				s.log.Error("special-order return refund failed",
					zap.String("special_order_id", so.ID.String()),
					zap.Error(err))
			}
		}
	}

	s.notifyReviewed(ctx, id)
	return s.repo.Returns.GetByID(ctx, id)
}

func (s *returnService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return err
	}
	req, err := s.repo.Returns.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrReturnNotFound
	}
	if role != models.RoleAdmin {
		if req.UserID != userID {
			return ErrForbidden
		}
		if req.Status != models.ReturnStatusPending {
			return ErrReturnAlreadyReviewed
		}
	}
	_, err = s.repo.Returns.Delete(ctx, id)
	return err
}

func (s *returnService) notifyReviewed(ctx context.Context, id uuid.UUID) {
	req, err := s.repo.Returns.GetByID(ctx, id)
	if err != nil || req == nil {
		return
	}
	user, err := s.repo.Users.GetByID(ctx, req.UserID)
	if err != nil || user == nil {
		return
	}
	if err := s.notifier.ReturnReviewed(ctx, user.Email, req); err != nil {
		s.log.Warn("return review email failed",
			zap.String("return_id", req.ID.String()),
			zap.Error(err))
	}
}
