// services/identity_verifier.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// ProofBundle is the opaque output of the World ID widget.
type ProofBundle struct {
	Proof             string `json:"proof"`
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	Signal            string `json:"signal"`
	VerificationLevel string `json:"verification_level"`
}

// Validate checks the fields the verifier cannot do without.
func (p ProofBundle) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Proof) == "" {
		missing = append(missing, "proof")
	}
	if strings.TrimSpace(p.MerkleRoot) == "" {
		missing = append(missing, "merkle_root")
	}
	if strings.TrimSpace(p.NullifierHash) == "" {
		missing = append(missing, "nullifier_hash")
	}
	if len(missing) > 0 {
		return &VerificationError{
			Code:   "invalid_request",
			Detail: "missing " + strings.Join(missing, ", "),
		}
	}
	return nil
}

// VerifyResult identifies the verified person.
type VerifyResult struct {
	NullifierHash     string
	VerificationLevel string
}

// IdentityVerifier checks a proof bundle with the identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, bundle ProofBundle) (*VerifyResult, error)
}

// WorldcoinClient verifies proofs against the Worldcoin developer API.
type WorldcoinClient struct {
	BaseURL string
	AppID   string
	Action  string
	Client  *http.Client
}

func NewWorldcoinClient(baseURL, appID, action string, client *http.Client) *WorldcoinClient {
	return &WorldcoinClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AppID:   appID,
		Action:  action,
		Client:  client,
	}
}

type worldcoinVerifyRequest struct {
	AppID         string `json:"app_id"`
	Action        string `json:"action"`
	Signal        string `json:"signal"`
	Proof         string `json:"proof"`
	NullifierHash string `json:"nullifier_hash"`
	MerkleRoot    string `json:"merkle_root"`
}

type worldcoinVerifyResponse struct {
	Success           bool   `json:"success"`
	NullifierHash     string `json:"nullifier_hash"`
	VerificationLevel string `json:"verification_level"`
	Code              string `json:"code"`
	Detail            string `json:"detail"`
}

// Verify calls POST {BaseURL}/api/v1/verify.
func (c *WorldcoinClient) Verify(ctx context.Context, bundle ProofBundle) (*VerifyResult, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(worldcoinVerifyRequest{
		AppID:         c.AppID,
		Action:        c.Action,
		Signal:        bundle.Signal,
		Proof:         bundle.Proof,
		NullifierHash: bundle.NullifierHash,
		MerkleRoot:    bundle.MerkleRoot,
	})
	if err != nil {
		return nil, fmt.Errorf("encode verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call worldcoin verify: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("read verify response: %w", err)
	}

	var out worldcoinVerifyResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode == http.StatusOK {
			return nil, fmt.Errorf("decode verify response: %w", err)
		}
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		log.Printf("❌ [VERIFY] worldcoin returned %d: %s", resp.StatusCode, string(raw))
		code := out.Code
		if code == "" {
			code = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		return nil, &VerificationError{Code: code, Detail: out.Detail}
	}

	level := out.VerificationLevel
	if level == "" {
		level = bundle.VerificationLevel
	}
	if level == "" {
		level = "orb"
	}
	nullifier := out.NullifierHash
	if nullifier == "" {
		nullifier = bundle.NullifierHash
	}
	return &VerifyResult{NullifierHash: nullifier, VerificationLevel: level}, nil
}
