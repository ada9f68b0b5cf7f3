package service

// allowed is shared by the internal tests and, through AllowedForTest, by the
// external service_test package.
var allowed = []string{".txt", ".pdf", ".md", ".html", ".htm"}

var AllowedForTest = allowed
