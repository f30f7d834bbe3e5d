// Package domain contains the core entities shared across the application:
// validation requests, their lifecycle status and the users who own them.
// These types represent business concepts and are intentionally free of
// infrastructure concerns.
package domain
