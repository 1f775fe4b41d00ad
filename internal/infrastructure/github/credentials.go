package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"BacklogStatus/internal/domain"
	"BacklogStatus/internal/ports"
)

// IdentityMode selects how the username is discovered.
type IdentityMode string

const (
	// IdentityAPI asks the REST API who owns the token.
	IdentityAPI IdentityMode = "api"
	// IdentitySession reads the logged-in user from the web session.
	IdentitySession IdentityMode = "session"
)

const (
	statusFormSelector = `form[action*="/users/status"] input[name="authenticity_token"]`
	userLoginSelector  = `meta[name="user-login"]`
)

// CredentialProvider scrapes identity and the status form token from GitHub.
type CredentialProvider struct {
	client *Client
	mode   IdentityMode
	logger logrus.FieldLogger
}

var _ ports.CredentialProvider = (*CredentialProvider)(nil)

// NewCredentialProvider defaults to IdentityAPI for an unknown mode.
func NewCredentialProvider(client *Client, mode IdentityMode, logger logrus.FieldLogger) *CredentialProvider {
	if mode != IdentitySession {
		mode = IdentityAPI
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CredentialProvider{client: client, mode: mode, logger: logger}
}

// ResolveIdentity returns the GitHub login to publish as.
func (p *CredentialProvider) ResolveIdentity(ctx context.Context, creds domain.Credentials) (string, error) {
	if p.mode == IdentitySession {
		return p.sessionLogin(ctx)
	}
	return p.apiLogin(ctx, creds.APIToken)
}

func (p *CredentialProvider) apiLogin(ctx context.Context, token string) (string, error) {
	resp, err := p.client.do(ctx, http.MethodGet, p.client.apiBase+"/user", nil, tokenHeader(token))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !ok(resp) {
		return "", &domain.CredentialResolutionError{
			What:   "username",
			Reason: fmt.Sprintf("bad response: %d %s", resp.StatusCode, statusText(resp)),
		}
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decode user: %w", err)
	}
	if user.Login == "" {
		return "", &domain.CredentialResolutionError{What: "username", Reason: "login missing from user response"}
	}
	return user.Login, nil
}

func (p *CredentialProvider) sessionLogin(ctx context.Context) (string, error) {
	doc, err := p.fetchDocument(ctx, p.client.webBase+"/", "username")
	if err != nil {
		return "", err
	}

	login := userLogin(doc)
	if login == "" {
		return "", &domain.CredentialResolutionError{What: "username", Reason: "user-login marker not found"}
	}
	return login, nil
}

// ResolvePublishToken scrapes the authenticity token of the status form on
// the user's profile page.
func (p *CredentialProvider) ResolvePublishToken(ctx context.Context, username string) (string, error) {
	doc, err := p.fetchDocument(ctx, p.client.webBase+"/"+url.PathEscape(username), "authenticity token")
	if err != nil {
		return "", err
	}

	if login := userLogin(doc); !strings.EqualFold(login, username) {
		p.logger.WithFields(logrus.Fields{
			"username": username,
			"session":  login,
		}).Warn("profile page is not authenticated as the target user")
	}

	token, exists := doc.Find(statusFormSelector).First().Attr("value")
	if !exists || strings.TrimSpace(token) == "" {
		return "", &domain.CredentialResolutionError{What: "authenticity token", Reason: "status form not found"}
	}
	return token, nil
}

func (p *CredentialProvider) fetchDocument(ctx context.Context, pageURL, what string) (*goquery.Document, error) {
	resp, err := p.client.do(ctx, http.MethodGet, pageURL, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !ok(resp) {
		return nil, &domain.CredentialResolutionError{
			What:   what,
			Reason: fmt.Sprintf("bad response: %d %s", resp.StatusCode, statusText(resp)),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func userLogin(doc *goquery.Document) string {
	login, _ := doc.Find(userLoginSelector).First().Attr("content")
	return strings.TrimSpace(login)
}
