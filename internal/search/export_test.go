package search

// NormalizeCategoryPath exposes normalizeCategoryPath to external tests.
var NormalizeCategoryPath = normalizeCategoryPath
