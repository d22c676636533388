// Package remover disposes of duplicate files once grouping has decided
// which file in each group is kept.
package remover
