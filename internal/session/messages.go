package session

// Console text.
const (
	messageWelcome       = "Welcome to the AI-Powered Multilingual Speech Assistant!"
	messageMenuHeader    = "Please select a language for speech recognition and TTS:"
	messageInvalidChoice = "Invalid choice. Please try again."
	messageGoodbye       = "Exiting assistant. Goodbye!"
	messageInterrupted   = "Exiting application..."
	messageClosed        = "Application closed."
	messageCalibrating   = "Adjusting for ambient noise, please wait..."
	messageProcessing    = "Processing your speech..."

	promptMenuChoice = "Enter the number of your choice: "
	promptIdle       = "Press Enter to start speaking, 'c' to change language, or 'q' to quit: "

	infoNoSpeech              = "Speech Recognition Info: No speech detected"
	infoRecognizerUnavailable = "Speech Recognition Info: API unavailable. Check your internet connection or API quota."
	infoRecognizerFailed      = "Speech Recognition Info: Speech recognition failed."
	infoSpeechFailed          = "An error occurred during text-to-speech."
)

// Spoken feedback. These are synthesized in the current language so the user
// hears them rather than having to watch the console.
const (
	spokenNoSpeech     = "I didn't hear anything. Please try speaking."
	spokenUnrecognized = "I didn't quite catch that. Could you please repeat?"
	spokenUnavailable  = "I'm sorry, my AI brain is currently unavailable."
	spokenEmptyReply   = "Sorry, I received an unusual response from the AI service."
	spokenFailedReply  = "Sorry, I encountered an error while trying to get a response from the AI service."

	spokenBlockedFormat = "Sorry, your request was blocked by the AI for safety reasons (%s). Please try rephrasing."
)
