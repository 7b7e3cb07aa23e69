package app

import (
	"github.com/m3rciful/rompostbot/bot/flow"
	coretelegram "github.com/m3rciful/rompostbot/core/telegram"
	"github.com/m3rciful/rompostbot/core/telegram/commands"
)

// buildRegistry routes every command and both confirm buttons to the engine.
func buildRegistry(fsm updates) *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	h := fsm.HandleUpdate

	reg.RegisterCommand("/start", commands.Command{Handler: h, Description: "Begin a new ROM post"})
	reg.RegisterCommand("/help", commands.Command{Handler: h, Description: "Show the post flow"})
	reg.RegisterCommand("/cancel", commands.Command{Handler: h, Description: "Cancel the current post"})
	reg.RegisterCommand("/skip", commands.Command{Handler: h, Description: "Skip an optional step", Hidden: true})
	reg.RegisterCommand("/done", commands.Command{Handler: h, Description: "Finish a list step", Hidden: true})

	_ = reg.RegisterCallback(flow.CallbackPublish, h)
	_ = reg.RegisterCallback(flow.CallbackCancel, h)
	// Buttons from an older deployment still reach the engine, which answers them as stale.
	reg.SetCallbackNotFound(h)
	return reg
}
