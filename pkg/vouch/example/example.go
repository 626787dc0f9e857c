// File: example/example.go

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vouch-protocol/vouch-sub000/pkg/vouch"
)

func main() {
	ctx := context.Background()
	cfg := vouch.DefaultConfig()

	// Agent A mints its own identity and signs an intent.
	agentA, err := vouch.GenerateIdentity("id:web:agent-a.example.com")
	if err != nil {
		log.Fatalf("generate identity: %v", err)
	}
	signerA, err := vouch.NewSignerWithConfig(agentA, agentA.Identifier, cfg)
	if err != nil {
		log.Fatalf("new signer: %v", err)
	}

	token, err := signerA.Sign(map[string]any{"action": "read_email"}, vouch.SignOptions{})
	if err != nil {
		log.Fatalf("sign: %v", err)
	}

	cache := vouch.NewMemoryKeyCache(cfg.CacheMaxSize, cfg.CacheTTL())
	replay := vouch.NewMemoryReplayGuard(cfg.ReplayMaxSize, time.Minute)
	defer replay.Close()
	revocation := vouch.NewRevocationRegistry(vouch.NewMemoryRevocationStore(), nil)
	resolver := vouch.NewWebResolver(cfg.ResolverTimeout())

	verifier := vouch.NewVerifier(cfg, cache, resolver, replay, revocation)
	verifier.AddTrustedRoot(agentA.Identifier, agentA.Public)

	valid, passport, reason := verifier.CheckVouch(ctx, token)
	fmt.Printf("first check: valid=%v reason=%v\n", valid, reason)
	if valid {
		fmt.Printf("passport: issuer=%s payload=%v\n", passport.Issuer, passport.Payload)
	}

	// Second presentation of the same token is a replay.
	valid, _, reason = verifier.CheckVouch(ctx, token)
	fmt.Printf("replay check: valid=%v reason=%v\n", valid, reason)

	// Agent B delegates from agent A's token.
	agentB, _ := vouch.GenerateIdentity("id:web:agent-b.example.com")
	signerB, _ := vouch.NewSignerWithConfig(agentB, agentB.Identifier, cfg)
	delegated, err := signerB.Sign(map[string]any{"action": "read_email"}, vouch.SignOptions{ParentToken: token})
	if err != nil {
		log.Fatalf("delegated sign: %v", err)
	}
	verifier.AddTrustedRoot(agentB.Identifier, agentB.Public)
	valid, passport, reason = verifier.CheckVouch(ctx, delegated)
	fmt.Printf("delegated check: valid=%v reason=%v chain_len=%d\n", valid, reason, len(passport.DelegationChain))

	// Reputation tracking for agent A.
	reputation := vouch.NewReputationEngine(vouch.NewMemoryReputationStore(cfg.ReputationBaseline), cfg.ReputationBaseline, cfg.ReputationDecayWindowDays, 1)
	for i := 0; i < 3; i++ {
		_, _ = reputation.RecordSuccess(ctx, agentA.Identifier, "completed task", nil)
	}
	_, _ = reputation.RecordFailure(ctx, agentA.Identifier, "timed out", nil)
	score, _ := reputation.GetScore(ctx, agentA.Identifier)
	fmt.Printf("agent A reputation: score=%d tier=%s total_actions=%d success_rate=%.2f\n",
		score.Score, score.Tier, score.TotalActions, score.SuccessRate)

	// Revoke agent A and show verification now fails even for a fresh token.
	_, _ = revocation.Revoke(ctx, agentA.Identifier, "key compromised", "", 0)
	freshToken, _ := signerA.Sign(map[string]any{"action": "read_email"}, vouch.SignOptions{})
	valid, _, reason = verifier.CheckVouch(ctx, freshToken)
	fmt.Printf("post-revocation check: valid=%v reason=%v\n", valid, reason)
}
