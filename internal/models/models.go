package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	Name         string    `gorm:"type:text;not null"`
	Phone        string    `gorm:"type:text"`
	Role         Role      `gorm:"type:text;not null;default:'customer'"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (User) TableName() string { return "users" }

// PendingSignup holds a registration awaiting OTP confirmation. Rows expire
// and are purged, so confirmation does not depend on process affinity.
type PendingSignup struct {
	Token        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:text;not null"`
	Name         string    `gorm:"type:text;not null"`
	Phone        string    `gorm:"type:text"`
	OTPCode      string    `gorm:"type:char(6);not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (PendingSignup) TableName() string { return "pending_signups" }

type Size string

const (
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
	SizeXL Size = "XL"
)

var Sizes = []Size{SizeS, SizeM, SizeL, SizeXL}

func IsValidSize(s Size) bool {
	for _, v := range Sizes {
		if v == s {
			return true
		}
	}
	return false
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	ImageURL    string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string { return "products" }

// ProductVariant is the per-size price and stock counter. Stock is only ever
// changed through a conditional UPDATE that keeps it non-negative.
type ProductVariant struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_variants_product_size"`
	Size       Size      `gorm:"type:text;not null;uniqueIndex:ux_variants_product_size"`
	PriceCents int64     `gorm:"not null;default:0"`
	Stock      int32     `gorm:"not null;default:0"`

	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (ProductVariant) TableName() string { return "product_variants" }

type Cart struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (Cart) TableName() string { return "carts" }

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_cart_items_cart_product_size"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_cart_items_cart_product_size"`
	Size      Size      `gorm:"type:text;not null;uniqueIndex:ux_cart_items_cart_product_size"`
	Quantity  uint32    `gorm:"type:int;not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (CartItem) TableName() string { return "cart_items" }

// OrderStatus values are the exact strings shown to customers.
type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "รอชำระเงิน"
	OrderStatusPending         OrderStatus = "รอดำเนินการ"
	OrderStatusPreparing       OrderStatus = "กำลังดำเนินการจัดเตรียมสินค้า"
	OrderStatusShipping        OrderStatus = "กำลังดำเนินการจัดส่งสินค้า"
	OrderStatusDelivered       OrderStatus = "จัดส่งสินค้าสำเร็จเเล้ว"
	OrderStatusCancelled       OrderStatus = "ยกเลิก"
)

type Order struct {
	ID         uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	TrackingID *string     `gorm:"type:text;uniqueIndex"`
	Status     OrderStatus `gorm:"type:text;not null;default:'รอชำระเงิน';index"`
	TotalCents int64       `gorm:"not null;default:0"`

	IsPaid            bool    `gorm:"not null;default:false"`
	CheckoutSessionID *string `gorm:"type:text;index"`
	PaymentIntentID   *string `gorm:"type:text"`

	CancelReason *string    `gorm:"type:text"`
	DeliveredAt  *time.Time `gorm:""`

	// Contact snapshot entered at checkout.
	ContactName  string `gorm:"type:text;not null"`
	ContactPhone string `gorm:"type:text;not null"`
	Address      string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null"`
	ProductName    string    `gorm:"type:text;not null"`
	Size           Size      `gorm:"type:text;not null"`
	Quantity       uint32    `gorm:"type:int;not null"`
	UnitPriceCents int64     `gorm:"not null"`
	LineTotalCents int64     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "pending"
	ReturnStatusApproved ReturnStatus = "อนุมัติ"
	ReturnStatusRejected ReturnStatus = "ปฏิเสธ"
)

// ReturnRequest belongs to exactly one order or one special order.
type ReturnRequest struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        *uuid.UUID   `gorm:"type:uuid;index"`
	SpecialOrderID *uuid.UUID   `gorm:"type:uuid;index"`
	UserID         uuid.UUID    `gorm:"type:uuid;not null;index"`
	Status         ReturnStatus `gorm:"type:text;not null;default:'pending';index"`
	Reason         string       `gorm:"type:text;not null"`
	Images         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	AdminNote      *string      `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []ReturnItem `gorm:"foreignKey:ReturnRequestID;constraint:OnDelete:CASCADE"`
}

func (ReturnRequest) TableName() string { return "return_requests" }

type ReturnItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnRequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderItemID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Quantity        uint32    `gorm:"type:int;not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (ReturnItem) TableName() string { return "return_items" }

type SpecialOrder struct {
	ID     uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status OrderStatus `gorm:"type:text;not null;default:'รอชำระเงิน';index"`

	// Customer-entered request fields.
	Name        string `gorm:"type:text;not null"`
	Phone       string `gorm:"type:text;not null"`
	Email       string `gorm:"type:text;not null"`
	Address     string `gorm:"type:text;not null"`
	Description string `gorm:"type:text;not null"`
	Quantity    uint32 `gorm:"type:int;not null"`
	Size        string `gorm:"type:text"`
	Notes       string `gorm:"type:text"`

	// Set by the admin during price approval.
	PriceCents *int64 `gorm:""`
	IsApproved bool   `gorm:"not null;default:false"`

	IsPaid            bool    `gorm:"not null;default:false"`
	PaymentURL        *string `gorm:"type:text"`
	CheckoutSessionID *string `gorm:"type:text;index"`
	PaymentIntentID   *string `gorm:"type:text"`

	TrackingID   *string    `gorm:"type:text;uniqueIndex"`
	CancelReason *string    `gorm:"type:text"`
	DeliveredAt  *time.Time `gorm:""`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (SpecialOrder) TableName() string { return "special_orders" }

// WebhookEvent records processed payment-gateway event ids so webhook
// delivery retries do not apply the same effect twice.
type WebhookEvent struct {
	EventID   string    `gorm:"type:text;primaryKey"`
	EventType string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }
