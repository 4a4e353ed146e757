// Package pwned checks passwords against the Have I Been Pwned range API
// without sending the password or its full hash.
package pwned

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const DefaultEndpoint = "https://api.pwnedpasswords.com"

type Checker interface {
	IsCompromised(ctx context.Context, password string) (bool, error)
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	threshold  int
}

func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		endpoint:   strings.TrimRight(endpoint, "/"),
		threshold:  1,
	}
}

func (c *Client) IsCompromised(ctx context.Context, password string) (bool, error) {
	sum := sha1.Sum([]byte(password))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := hash[:5], hash[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/range/"+prefix, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Add-Padding", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("pwned range request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("pwned range request: unexpected status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		candidate, count, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || !strings.EqualFold(candidate, suffix) {
			continue
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			return false, fmt.Errorf("pwned range response: %w", err)
		}
		return n >= c.threshold, nil
	}
	return false, scanner.Err()
}

// Disabled never reports a password as compromised.
type Disabled struct{}

func (Disabled) IsCompromised(context.Context, string) (bool, error) {
	return false, nil
}
