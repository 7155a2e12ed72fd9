// Package ui renders workflow notifications for the operator.
package ui
