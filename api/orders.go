package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/vialabs/payorder/types"
)

// Quote prices a prospective order. The discriminant on the wire always comes
// from the variant itself, never from caller-filled fields.
func (c *Client) Quote(ctx context.Context, req types.QuoteRequest) (*types.QuoteDetails, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, types.ValidationError("encode quote request: %v", err)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &body); err != nil {
		return nil, types.ValidationError("encode quote request: %v", err)
	}
	tag, _ := json.Marshal(req.QuoteType())
	body["type"] = tag

	var details types.QuoteDetails
	if err := c.do(ctx, "POST", "/orders/quote", "quote", body, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// CreateOrder submits a new order and returns the canonical server copy,
// including the assigned id and global deposit address.
func (c *Client) CreateOrder(ctx context.Context, req *types.CreateOrderRequest) (*types.Order, error) {
	var order types.Order
	if err := c.do(ctx, "POST", "/orders", "create_order", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Order fetches the combined order + transaction record in a single call.
func (c *Client) Order(ctx context.Context, orderID string) (*types.OrderRecord, error) {
	if orderID == "" {
		return nil, types.ValidationError("order id is empty")
	}

	var record types.OrderRecord
	if err := c.do(ctx, "GET", "/orders/"+url.PathEscape(orderID), "get_order", nil, &record); err != nil {
		return nil, err
	}
	if record.Order == nil {
		return nil, types.DecodeError("order record has no order")
	}
	return &record, nil
}

// ListOrders pages through the order history of a creator address.
func (c *Client) ListOrders(ctx context.Context, creatorAddress string, limit, offset int) (*types.OrdersPage, error) {
	if creatorAddress == "" {
		return nil, types.ValidationError("creator address is empty")
	}

	query := url.Values{}
	query.Set("creatorAddress", creatorAddress)
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("offset", fmt.Sprintf("%d", offset))

	var page types.OrdersPage
	if err := c.do(ctx, "GET", "/orders?"+query.Encode(), "list_orders", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
