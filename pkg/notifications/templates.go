package notifications

import "fmt"

// The helpers below build CreateInput values for the salon's recurring
// notifications. Callers still set Contact and may override Channels.

func AppointmentReminder(recipient, customerName, when string) CreateInput {
	return CreateInput{
		Kind:       KindAppointment,
		Title:      "Appointment Reminder",
		Body:       fmt.Sprintf("Hi %s, your appointment is scheduled for %s. Please arrive 10 minutes early.", customerName, when),
		Recipient:  recipient,
		Priority:   PriorityNormal,
		Channels:   Channels{ChannelLive, ChannelPush, ChannelMail},
		ActionURL:  "/appointments",
		ActionText: "View Appointment",
	}
}

func AppointmentConfirmation(recipient, when string) CreateInput {
	return CreateInput{
		Kind:       KindAppointment,
		Title:      "Appointment Confirmed",
		Body:       fmt.Sprintf("Your appointment has been confirmed for %s. We look forward to seeing you!", when),
		Recipient:  recipient,
		Priority:   PriorityNormal,
		Channels:   Channels{ChannelLive, ChannelPush, ChannelMail},
		ActionURL:  "/appointments",
		ActionText: "View Details",
	}
}

func LowInventory(recipient, itemName string, currentStock int) CreateInput {
	return CreateInput{
		Kind:       KindInventory,
		Title:      "Low Inventory Alert",
		Body:       fmt.Sprintf("%s is running low with only %d units remaining.", itemName, currentStock),
		Recipient:  recipient,
		Priority:   PriorityHigh,
		Channels:   Channels{ChannelLive, ChannelPush, ChannelMail},
		ActionURL:  "/inventory",
		ActionText: "Reorder Now",
	}
}

func CommissionReady(recipient string, amount float64) CreateInput {
	return CreateInput{
		Kind:       KindCommission,
		Title:      "Commission Ready",
		Body:       fmt.Sprintf("Your commission of $%.2f is ready for review.", amount),
		Recipient:  recipient,
		Priority:   PriorityNormal,
		Channels:   Channels{ChannelLive, ChannelPush, ChannelMail},
		ActionURL:  "/commissions",
		ActionText: "View Commission",
	}
}

func SystemMaintenance(recipient, when string) CreateInput {
	return CreateInput{
		Kind:       KindSystem,
		Title:      "Scheduled Maintenance",
		Body:       fmt.Sprintf("System maintenance is scheduled for %s. Please save your work.", when),
		Recipient:  recipient,
		Priority:   PriorityHigh,
		Channels:   Channels{ChannelLive, ChannelPush},
		ActionURL:  "/system/status",
		ActionText: "View Status",
	}
}
