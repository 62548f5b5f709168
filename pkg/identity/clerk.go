package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req/v3"
)

// ClerkResolver resolves mention handles against the Clerk user directory.
type ClerkResolver struct {
	client *req.Client
}

func NewClerkResolver(apiURL, secretKey string) *ClerkResolver {
	client := req.C().
		SetBaseURL(apiURL).
		SetCommonBearerAuthToken(secretKey).
		SetTimeout(5 * time.Second)
	return &ClerkResolver{client: client}
}

type clerkUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (r *ClerkResolver) Resolve(ctx context.Context, handles []string) (map[string]string, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	var users []clerkUser
	resp, err := r.client.R().
		SetContext(ctx).
		AddQueryParams("username", handles...).
		SetSuccessResult(&users).
		Get("/v1/users")
	if err != nil {
		return nil, fmt.Errorf("clerk user lookup: %w", err)
	}
	if resp.IsErrorState() {
		return nil, fmt.Errorf("clerk user lookup: status %d", resp.StatusCode)
	}
	out := make(map[string]string, len(users))
	for _, u := range users {
		if u.Username != "" {
			out[u.Username] = u.ID
		}
	}
	return out, nil
}
