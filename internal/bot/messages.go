package bot

import "fmt"

const (
	msgAskLocation     = "Enter the city you are interested in:"
	msgLocationTooLong = "That name is too long. Please enter a shorter city name:"
	msgAskDate         = "Pick a date or type it as YYYY-MM-DD:"
	msgInvalidDate     = "Invalid date format. Please try again (YYYY-MM-DD)."
	msgFetchFailed     = "Could not get the forecast. Please try again later."
	msgSaveFailed      = "Could not save the subscription. Please try again later."
	msgCancelled       = "Dialog cancelled."
	msgNothingToCancel = "There is nothing to cancel."
	msgFinishFirst     = "Finish the current dialog or send /cancel first."
	msgMenu            = "What would you like to do?"
	msgNoSubscriptions = "You have no subscriptions."
	msgPickToView      = "Choose a subscription to view:"
	msgPickToDelete    = "Choose a subscription to delete:"
	msgNotFound        = "Subscription not found."
	msgIdleHint        = "Send /start to subscribe to a forecast or /menu to manage subscriptions."
	msgHelp            = "Send /start to subscribe to a forecast for a city and date. " +
		"You will be notified when the forecast changes.\n" +
		"/menu lets you view or delete subscriptions. /cancel aborts the current dialog."
)

func confirmationText(location, date, forecast string) string {
	return fmt.Sprintf("Subscription added. Weather in %s on %s:\n%s", location, date, forecast)
}

func liveForecastText(location, date, forecast string) string {
	return fmt.Sprintf("Weather in %s on %s:\n%s", location, date, forecast)
}

func deletedText(location, date string) string {
	return fmt.Sprintf("Subscription removed: %s on %s.", location, date)
}

func subscriptionLabel(location, date string) string {
	return fmt.Sprintf("%s, %s", location, date)
}
