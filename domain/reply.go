package domain

import "fmt"

// Server-to-client lines. These literals are the wire protocol: clients
// and tests match on them byte for byte, so they must never drift.
const (
	ReplyNicknameTaken = "Nickname already taken. Try another one."
	ReplyNicknameEmpty = "Nickname cannot be empty."
	ReplyChannelEmpty  = "Channel name cannot be empty."

	ReplyNickBeforeJoin    = "You must set a nickname before joining channels."
	ReplyNickBeforeSend    = "You must set a nickname before sending messages."
	ReplyNickBeforePrivate = "You must set a nickname before sending private messages."

	UsageSend    = "Usage: /send <channel> <message>"
	UsagePrivate = "Usage: /pm <nick> <message>"

	ReplyUnknownCommand = "Unknown command. Try /nick, /join, /send, /pm, or /quit."
	ReplyDisconnecting  = "Disconnecting..."
)

func ReplyNicknameSet(name string) string {
	return fmt.Sprintf("Nickname set to '%s'.", name)
}

func ReplyChannelJoined(channel string) string {
	return fmt.Sprintf("You have joined channel '%s'.", channel)
}

func ReplyMustJoinChannel(channel string) string {
	return fmt.Sprintf("You must join channel '%s' before sending messages there.", channel)
}

func ReplyUserNotFound(target string) string {
	return fmt.Sprintf("User '%s' not found.", target)
}

func FormatChannelMessage(channel, sender, message string) string {
	return fmt.Sprintf("[Channel %s] %s: %s", channel, sender, message)
}

func FormatPrivateMessage(sender, message string) string {
	return fmt.Sprintf("[Private] %s: %s", sender, message)
}

// Banner returns the welcome lines sent on connect, in order. The trailing
// empty string produces the blank line that separates the banner from the
// conversation.
func Banner() []string {
	return []string{
		"Welcome to the chat server!",
		"Use '/nick <yourNickname>' to set your nickname.",
		"Use '/join <channel>' to join a channel.",
		"Use '/send <channel> <message>' to send a message to a channel.",
		"Use '/pm <nick> <message>' to send a private message.",
		"Use '/quit' to disconnect.",
		"",
	}
}
