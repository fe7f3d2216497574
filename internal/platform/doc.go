// Package platform provides cross-platform file permission helpers. On
// Windows permission bits are not applied.
package platform
