// Package web embeds the dashboard templates and static assets into the
// binary so deployment is a single file.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
