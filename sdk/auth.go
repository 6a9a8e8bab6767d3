package sdk

import "context"

// RegisterRequest represents user registration request
type RegisterRequest struct {
	UserId      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Avatar      string `json:"avatar,omitempty"`
	Sport       string `json:"sport,omitempty"`
}

// LoginRequest represents user login request
type LoginRequest struct {
	UserId     string `json:"user_id"`
	Password   string `json:"password"`
	PlatformId int    `json:"platform_id"`
}

// LoginResponse represents user login response
type LoginResponse struct {
	Token   string       `json:"token"`
	Profile *ProfileInfo `json:"profile"`
}

// Register registers a new user
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*ProfileInfo, error) {
	var result ProfileInfo
	if err := c.post(ctx, "/auth/register", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates and stores the returned token on the client
func (c *Client) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var result LoginResponse
	if err := c.post(ctx, "/auth/login", req, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

// Logout invalidates the current token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/profile/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// GetMyProfile returns the caller's own profile
func (c *Client) GetMyProfile(ctx context.Context) (*ProfileInfo, error) {
	var result ProfileInfo
	if err := c.get(ctx, "/profile/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProfile returns another user's public profile
func (c *Client) GetProfile(ctx context.Context, userId string) (*ProfileInfo, error) {
	var result ProfileInfo
	if err := c.get(ctx, "/profile/"+userId, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProfileRequest carries the mutable profile fields
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Sport       *string `json:"sport,omitempty"`
	Extra       *string `json:"extra,omitempty"`
}

// UpdateProfile updates the caller's own profile
func (c *Client) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*ProfileInfo, error) {
	var result ProfileInfo
	if err := c.put(ctx, "/profile/me", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
