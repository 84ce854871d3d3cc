// Package ui provides the main entry point for the UI.
package ui

import (
	"github.com/palemoky/gan-deng-yan/internal/ui/input"
	"github.com/palemoky/gan-deng-yan/internal/ui/model"
	"github.com/palemoky/gan-deng-yan/internal/ui/view"
)

// NewGameModel creates a GameModel with the default view renderer and key handler.
func NewGameModel(ctrl model.Controller, opts model.Options) *model.GameModel {
	m := model.NewGameModel(ctrl, opts)
	m.SetViewRenderer(view.CreateViewRenderer())
	m.SetKeyHandler(input.HandleKeyPress)
	return m
}
