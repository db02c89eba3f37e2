// SPDX-License-Identifier: Apache-2.0

package service

import "github.com/noa10/mataresit-app-sub003/models"

// ResolveConflict picks the surviving version of an entity when a remote
// record arrives for something that may also exist locally. Last writer wins:
// the entity with the later UpdatedAt survives, and on an exact tie the remote
// copy is taken so that every replica converges to the server's version.
//
// local is nil when the entity has never been seen on this device.
func ResolveConflict(local *models.Entity, remote models.Entity) models.Entity {
	if local == nil {
		return remote
	}
	if local.UpdatedAt.After(remote.UpdatedAt) {
		return *local
	}
	return remote
}
