// SPDX-License-Identifier: Apache-2.0

// Package client implements the offline-first client runtime.
//
// It wires local storage, the remote adapter, connectivity monitoring and
// background synchronization into a single process lifecycle.
package client
