// Package userlookup fetches storefront user profiles from the remote user
// service (a reqres-style JSON API).
package userlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/requester"
)

// Params identifies the user to fetch
type Params struct {
	UserID string
}

// User is the profile returned by the remote service
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty"`
}

// Result is the outcome of a lookup
type Result = requester.CallResult[User]

// Client looks users up through a requester.Invoker
type Client struct {
	invoker *requester.Invoker[Params, User]
}

// NewClient creates a user lookup client for cfg
func NewClient(cfg *config.ServiceConfig, transport requester.Transport, opts ...requester.Option) *Client {
	return &Client{invoker: requester.NewInvoker(cfg, transport, Endpoint(), opts...)}
}

// GetUser fetches one user
func (c *Client) GetUser(ctx context.Context, userID string) Result {
	return c.invoker.Call(ctx, Params{UserID: userID})
}

// Invoker exposes the underlying invoker
func (c *Client) Invoker() *requester.Invoker[Params, User] {
	return c.invoker
}

// Endpoint is the call contract of the user service
func Endpoint() requester.Endpoint[Params, User] {
	return requester.Endpoint[Params, User]{
		Method:  http.MethodGet,
		Headers: map[string]string{"Content-Type": "application/json"},
		Resolve: resolve,
		Decode:  decode,
		Mock:    mock,
	}
}

func resolve(p Params) (requester.Route, error) {
	id := strings.TrimSpace(p.UserID)
	if id == "" {
		return requester.Route{}, requester.MissingParam("userID")
	}
	return requester.Route{Segments: []string{id}}, nil
}

// envelope is the reqres response shape: the user lives under "data"
type envelope struct {
	Data *User `json:"data"`
}

func decode(body []byte) (User, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return User{}, err
	}
	if env.Data != nil {
		return *env.Data, nil
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return User{}, err
	}
	if user.ID == 0 && user.FirstName == "" && user.LastName == "" {
		return User{}, fmt.Errorf("response contains no user")
	}
	return user, nil
}

const mockAvatar = "https://reqres.in/img/faces/1-image.jpg"

func mock(p Params) *requester.Response {
	id, _ := strconv.Atoi(strings.TrimSpace(p.UserID))
	body, _ := json.Marshal(envelope{Data: &User{
		ID:        id,
		Email:     "mock.user@reqres.in",
		FirstName: "Mock",
		LastName:  "User",
		Avatar:    mockAvatar,
	}})
	return &requester.Response{
		StatusCode:    http.StatusOK,
		StatusMessage: "Success",
		Headers:       http.Header{"Content-Type": []string{"application/json"}},
		Body:          body,
	}
}
