// SPDX-License-Identifier: Apache-2.0

package service

import (
	"time"

	"github.com/noa10/mataresit-app-sub003/models"
)

// fieldMappings translates local field names to the remote schema's column
// names, per collection. Fields missing from the table pass through unchanged,
// so newly added fields keep syncing without a mapping release.
var fieldMappings = map[models.EntityType]map[string]string{
	models.EntityTypeReceipt: {
		"merchant":      "merchant",
		"totalAmount":   "total",
		"taxAmount":     "tax",
		"currencyCode":  "currency",
		"purchasedAt":   "date",
		"paymentMethod": "payment_method",
		"category":      "predicted_category",
		"imageUrl":      "image_url",
		"notes":         "notes",
		"status":        "status",
	},
	models.EntityTypeTeam: {
		"name":        "name",
		"description": "description",
		"ownerId":     "owner_id",
		"slug":        "slug",
		"status":      "status",
	},
	models.EntityTypeProfile: {
		"firstName":        "first_name",
		"lastName":         "last_name",
		"email":            "email",
		"avatarUrl":        "avatar_url",
		"subscriptionTier": "subscription_tier",
	},
}

// reverseMappings is fieldMappings with key and value swapped, built once at
// package init so ToLocalFields stays a plain lookup.
var reverseMappings = func() map[models.EntityType]map[string]string {
	out := make(map[models.EntityType]map[string]string, len(fieldMappings))
	for entityType, mapping := range fieldMappings {
		reversed := make(map[string]string, len(mapping))
		for local, remote := range mapping {
			reversed[remote] = local
		}
		out[entityType] = reversed
	}
	return out
}()

// ToRemoteFields renames local field keys to their remote column names.
func ToRemoteFields(entityType models.EntityType, fields map[string]any) map[string]any {
	return translate(fieldMappings[entityType], fields)
}

// ToLocalFields renames remote column names back to local field keys.
func ToLocalFields(entityType models.EntityType, fields map[string]any) map[string]any {
	return translate(reverseMappings[entityType], fields)
}

func translate(mapping map[string]string, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if renamed, ok := mapping[key]; ok {
			key = renamed
		}
		out[key] = value
	}
	return out
}

// ToRemoteEntity assembles the wire record for a local entity.
func ToRemoteEntity(entityType models.EntityType, entity models.Entity) models.RemoteEntity {
	return models.RemoteEntity{
		ID:        entity.ID,
		UpdatedAt: entity.UpdatedAt,
		Fields:    ToRemoteFields(entityType, entity.Fields),
	}
}

// ToLocalEntity converts a fetched wire record into a local entity.
func ToLocalEntity(entityType models.EntityType, record models.RemoteEntity) models.Entity {
	return models.Entity{
		ID:        record.ID,
		UpdatedAt: record.UpdatedAt,
		Fields:    ToLocalFields(entityType, record.Fields),
	}
}

// extractUpdatedAt pulls an RFC 3339 "updatedAt" value out of a queued
// payload, falling back to the given time when the payload carries none.
// The returned map never contains the key.
func extractUpdatedAt(payload map[string]any, fallback time.Time) (time.Time, map[string]any) {
	fields := make(map[string]any, len(payload))
	updatedAt := fallback
	for key, value := range payload {
		if key == "updatedAt" {
			switch v := value.(type) {
			case time.Time:
				updatedAt = v
			case string:
				if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
					updatedAt = parsed
				}
			}
			continue
		}
		fields[key] = value
	}
	return updatedAt, fields
}
