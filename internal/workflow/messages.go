package workflow

const (
	msgBusy            = "I'm still working on your previous request. Please don't write anything in the chat and try again in a moment!"
	msgStopping        = "Stopping the current task..."
	msgCancelled       = "Done, cancelled."
	msgNothingToCancel = "There is nothing to cancel."
	msgRepeatStart     = "I'll repeat everything you write. Press /cancel to stop."

	msgNoteAsk     = "Write a note and I'll save it\n(P.S. I swear I won't show it to anyone 😁)"
	msgNoteSaved   = "Saved it, thanks for the trust 😉"
	msgNoteFailed  = "I couldn't save the note, please try again later."
	msgNoNotes     = "You have no notes yet."
	msgNotesFailed = "I couldn't read your notes, please try again later."

	msgJokeIntro       = "Here comes your joke"
	msgJokeUnavailable = "The jokes ran out for now, try again later."

	msgTranslateRules = "Rules:\n" +
		"1. Name languages in English or by code, for example: Russian or ru\n" +
		"2. Almost every language in the world is available!\n" +
		"3. If the language is wrong, I'll ask again\n" +
		"4. The text must not exceed 1000 characters!"
	msgAskSourceLang        = "Which language is your text written in?"
	msgAskTargetLang        = "Which language should I translate it into?"
	msgAskText              = "Write the text:\n(it must not exceed 1000 characters)"
	msgInvalidLanguage      = "You entered an invalid language: %s\n"
	msgTranslateGaveUp      = "Too many invalid languages, translation cancelled. Start again with /translate."
	msgTranslateUnavailable = "Translation is unavailable right now, please try again later."

	msgPickProduct    = "Please pick a product from the search results."
	msgChainStart     = "One moment, collecting the information..."
	msgChainTip       = "I advise turning your phone to landscape!"
	msgSpecsTitle     = "Product specifications:"
	msgReviewsTitle   = "Reviews:"
	msgNoReviews      = "Unfortunately, this product has no reviews yet."
	msgOffersTitle    = "Shops:"
	msgChainFailed    = "I couldn't load the product page. Please don't write anything in the chat and try again!"
	msgChainCancelled = "Product search stopped."
)
