package bot

const (
	msgGreeting = "Hi, I'm Pixel, the smallest member of the family, " +
		"but I serve so well that many would envy me 😊\n\n" +
		"Where shall we start, <b>%s</b>? Hint: /menu"
	msgMenu        = "Menu:"
	msgChoose      = "Choose:"
	msgNoteSearch  = "Note search:"
	msgShopSearch  = "Product search:"
	msgSearch      = "Search"
	msgFallback    = "I don't know what to do with that yet. Hint: /menu"
	msgDocument    = "I can't read files, send me text instead."
	msgAdminOnly   = "This command is only for the admin."
	msgRateLimited = "Not so fast, please 🙂"
	msgStaleButton = "This button is no longer active."
	msgPanic       = "Something went wrong, I had to start over. Try again: /menu"
	msgSessions    = "Live sessions: %d"

	notePrefix  = "Your note: "
	noteCreated = "Created: "
	shopName    = "Name: "
	shopPrice   = "Price: "
)
