package lookup

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/shipment-support/internal/domain"
)

// Directory is an in-memory order catalogue. Identifiers match when the query
// is a case-insensitive substring, and the first order in catalogue order wins.
type Directory struct {
	mu     sync.RWMutex
	orders []domain.OrderData
}

// NewDirectory builds a directory over orders.
func NewDirectory(orders ...domain.OrderData) *Directory {
	return &Directory{orders: append([]domain.OrderData(nil), orders...)}
}

type orderFile struct {
	Orders []orderRecord `yaml:"orders"`
}

type orderRecord struct {
	OrderNumber     string       `yaml:"order_number"`
	AWB             string       `yaml:"awb"`
	ReferenceNumber string       `yaml:"reference_number"`
	CustomerName    string       `yaml:"customer_name"`
	CustomerPhone   string       `yaml:"customer_phone"`
	CustomerEmail   string       `yaml:"customer_email"`
	ShippingCompany string       `yaml:"shipping_company"`
	ShippingAddress string       `yaml:"shipping_address"`
	TotalAmount     string       `yaml:"total_amount"`
	PaymentMethod   string       `yaml:"payment_method"`
	OrderDate       string       `yaml:"order_date"`
	Status          string       `yaml:"status"`
	Items           []itemRecord `yaml:"items"`
}

type itemRecord struct {
	Name      string `yaml:"name"`
	SKU       string `yaml:"sku"`
	Quantity  int    `yaml:"quantity"`
	UnitPrice string `yaml:"unit_price"`
}

// LoadDirectory reads a YAML order catalogue from path.
func LoadDirectory(path string) (*Directory, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	return ParseDirectory(content)
}

// ParseDirectory decodes a YAML order catalogue.
func ParseDirectory(content []byte) (*Directory, error) {
	var file orderFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	orders := make([]domain.OrderData, 0, len(file.Orders))
	for i, rec := range file.Orders {
		order, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("order %d (%s): %w", i, rec.OrderNumber, err)
		}
		orders = append(orders, order)
	}
	return NewDirectory(orders...), nil
}

func (r orderRecord) toDomain() (domain.OrderData, error) {
	total, err := parseAmount(r.TotalAmount)
	if err != nil {
		return domain.OrderData{}, fmt.Errorf("total_amount: %w", err)
	}
	var orderDate time.Time
	if r.OrderDate != "" {
		orderDate, err = time.Parse(time.DateOnly, r.OrderDate)
		if err != nil {
			return domain.OrderData{}, fmt.Errorf("order_date: %w", err)
		}
	}
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		price, err := parseAmount(it.UnitPrice)
		if err != nil {
			return domain.OrderData{}, fmt.Errorf("item %s unit_price: %w", it.SKU, err)
		}
		items = append(items, domain.OrderItem{Name: it.Name, SKU: it.SKU, Quantity: it.Quantity, UnitPrice: price})
	}
	return domain.OrderData{
		OrderNumber:     r.OrderNumber,
		AWB:             r.AWB,
		ReferenceNumber: r.ReferenceNumber,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		ShippingCompany: r.ShippingCompany,
		ShippingAddress: r.ShippingAddress,
		TotalAmount:     total,
		PaymentMethod:   r.PaymentMethod,
		OrderDate:       orderDate,
		Status:          r.Status,
		Items:           items,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

// Add appends an order to the catalogue.
func (d *Directory) Add(order domain.OrderData) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orders = append(d.orders, order)
}

// Len reports the number of orders.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.orders)
}

func (d *Directory) ByOrderNumber(ctx context.Context, orderNumber string) (*domain.OrderData, error) {
	return d.find(ctx, orderNumber, func(o domain.OrderData) string { return o.OrderNumber })
}

func (d *Directory) ByAWB(ctx context.Context, awb string) (*domain.OrderData, error) {
	return d.find(ctx, awb, func(o domain.OrderData) string { return o.AWB })
}

func (d *Directory) ByReference(ctx context.Context, referenceNumber string) (*domain.OrderData, error) {
	return d.find(ctx, referenceNumber, func(o domain.OrderData) string { return o.ReferenceNumber })
}

func (d *Directory) find(ctx context.Context, query string, field func(domain.OrderData) string) (*domain.OrderData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, order := range d.orders {
		value := strings.ToLower(field(order))
		if value != "" && strings.Contains(value, query) {
			found := order
			found.Items = append([]domain.OrderItem(nil), order.Items...)
			return &found, nil
		}
	}
	return nil, nil
}
