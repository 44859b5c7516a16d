// Package testutil provides utilities for testing switchtower components.
//
// Key components:
//   - TestEnvironment: isolated HOME and XDG directories plus recipe files
//   - RecordingDialer: a transport.Dialer that records commands instead of
//     running them
//
// Usage guidelines:
//   - Recipes are defined inline in the test and written with WriteRecipe
//   - Each test gets its own environment; nothing is shared between tests
package testutil
