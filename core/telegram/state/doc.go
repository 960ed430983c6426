// Package state provides a keyed, per-user session store for Telegram bots.
// Access goes through leases so that at most one transition per user runs at a
// time; the stored value type is chosen by the bot.
package state
