// Package utils provides small helpers shared by the planning packages:
// parsing of comma-separated id lists (the configured site ids) and
// conversions between optional (pointer) and plain values.
package utils
