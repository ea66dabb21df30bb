// Package http provides HTTP handlers and middleware for the attendance API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"username","password"}. Response:
//     {"token","expires_at","user"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /logout: revokes the current session token extracted from the Authorization
//     header or session cookie. Returns 204 No Content and clears the cookie.
//   - GET /users, POST /users, GET /users/{id}, PUT /users/{id}, DELETE /users/{id}:
//     staff management endpoints exchanging the `userDTO` payload defined in
//     user_handler.go. Mutations and listing require admin privileges; employees may
//     fetch their own account.
//   - POST /attendance/clock-in: opens today's record for the authenticated employee
//     and reports whether the punch was late.
//   - POST /attendance/{id}/meal-start, POST /attendance/{id}/meal-end,
//     POST /attendance/{id}/clock-out: stamp the remaining punch transitions on an
//     existing record. Employees may only punch their own records.
//   - GET /attendance/today: returns the caller's record for the current date along
//     with the derived status and the punch actions currently available.
//   - GET /attendance/stats: returns the caller's aggregates for the week starting on
//     the most recent Sunday.
//   - GET /rosters?week=YYYY-MM-DD: lists every stored roster for the selected week
//     (admin only). GET /rosters/{userId}?week=... fetches one user's roster;
//     PUT /rosters/{userId}/{day} assigns a single weekday cell (admin only).
//   - GET /reports: all-time punctuality summary per employee (admin only).
//   - GET /audit: administrative action trail, newest first (admin only).
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
