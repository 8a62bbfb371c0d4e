package discord

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// IsNotFound reports whether err means the platform object no longer exists.
func IsNotFound(err error) bool {
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return true
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownGuild,
			discordgo.ErrCodeUnknownMessage,
			discordgo.ErrCodeUnknownUser,
			discordgo.ErrCodeUnknownMember:
			return true
		}
	}
	return rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}

// IsForbidden reports whether err is a permission denial.
func IsForbidden(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return true
		}
	}
	return rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden
}

// IsBadRequest reports whether the platform rejected the payload (e.g. an invalid channel name).
func IsBadRequest(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}
	return rest.Response != nil && rest.Response.StatusCode == http.StatusBadRequest
}
