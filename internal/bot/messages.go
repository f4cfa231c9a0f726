package bot

// =============================================================================
// General Messages
// =============================================================================

const (
	MsgStart = `What are you looking for? Try typing a set or minifigure number or name, for example 4950, sw0547 or fishing store.`

	MsgHelp = `
		Try typing in a set number, name or minifigure number to get more info on it.
		Example "75100-1", "4950", "sw0547" or "hotel".

		In group chats use commands like /info 42069 or /price col404.
		/price takes NEW or USED and STOCK or SOLD, for example /price 75100 USED SOLD.

		Use /search to find set numbers by name, for example /search hotel, and /search_fig for minifigures.
	`

	MsgUnexpectedErr     = "Something unexpected happened, please try again later."
	MsgUnknownCommand    = "Unknown command. See /help."
	MsgNotImplemented    = "Not implemented yet"
	MsgSearchUnavailable = "Search is not available right now."
)

// =============================================================================
// Lookup Messages
// =============================================================================

const (
	MsgInfoUsage          = "Usage: /info <set or minifigure number>, for example /info 75100"
	MsgPriceUsage         = "Usage: %s <set or minifigure number> [NEW|USED], for example /price sw0547 USED"
	MsgSearchUsage        = "Usage: /search <name>, for example /search hotel"
	MsgSearchFigUsage     = "Usage: /search_fig <name>, for example /search_fig clone trooper"
	MsgMissingFromCatalog = "Can't find anything for %s. It is possible that this item is missing from BrickLink database."
)

// =============================================================================
// Admin Messages
// =============================================================================

const (
	MsgForbidden           = "Sorry, this command is only available to admins."
	MsgUploadUsage         = "Send a minifigure catalog file with the caption /upload, or reply /upload to one."
	MsgUploadTooLarge      = "The file is too large. Telegram lets bots download files up to 20 MB."
	MsgUploadUnknownFormat = "Could not read %s. Expected a BrickLink minifigure catalog download or a code,name,year CSV file."
	MsgUploadEmpty         = "No minifigures found in %s."
	MsgUploadDone          = "Minifigure index updated with %d entries."

	MsgStatus = `
		Cache: %s
		Active chats: %d
		%s
	`
	MsgStatusUpload    = "Last index upload: %d entries to %s at %s by %d"
	MsgStatusNoUploads = "No index uploads recorded."
)
