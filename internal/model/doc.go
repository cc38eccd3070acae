// Package model defines shared data types for the disclosure event tape.
//
// Conventions:
//   - Amounts: disclosed dollar-range bounds as float64 (nullable via pointers)
//   - Timestamps: time.Time in UTC; date-only values are UTC midnight
//   - IDs: store-assigned int64 for events and raw rows; hex sha-256 fingerprints for dedup
package model
