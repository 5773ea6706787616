// Package acauth is the authentication core for a game-server
// account-management API. It verifies legacy account digests, issues and
// validates JWT bearer tokens, drives the TOTP second factor, gates
// registration and password reset behind math CAPTCHA challenges, and
// throttles every flow with a per-route moving-window rate limiter.
//
// The package is the core only. HTTP routing, the relational account store,
// and outbound mail delivery are external collaborators injected through
// [Builder]: the engine calls [AccountStore], [TOTPStore], [CaptchaStore],
// [TokenStore], and mail Sender implementations but never owns their
// internals.
//
// Engine methods are safe for concurrent use after [Builder.Build]. The
// credential hasher, token manager, and TOTP verifier are pure functions of
// their inputs plus configuration; all shared state lives in the injected
// stores, which must provide atomic semantics for their single mutating
// operations (consume-once delete, window increment).
package acauth
