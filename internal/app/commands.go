package app

import (
	"fmt"
	"log"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"

	"github.com/iranmap/inventory-bot/internal/config"
	"github.com/iranmap/inventory-bot/internal/ledger"
)

// buildCommands assembles the slash command set. Item choices come from the
// configured tracked list so the command stays in sync with the ledger seed.
func buildCommands(trackedItems []string) []*discordgo.ApplicationCommand {
	minAmount := float64(1)

	itemChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(trackedItems))
	for _, item := range trackedItems {
		itemChoices = append(itemChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  item,
			Value: item,
		})
	}

	taskTypeChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Drug Task", Value: "drug"},
		{Name: "Gang Task", Value: "gang"},
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "inventory",
			Description: "Show the current inventory",
		},
		{
			Name:        "addinventory",
			Description: "Manually add or remove inventory",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "Add or remove",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Add", Value: ledger.TransactionAdd},
						{Name: "Remove", Value: ledger.TransactionRemove},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "item",
					Description: "Item name",
					Required:    true,
					Choices:     itemChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "task",
			Description: "Task XP tracking",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show task completions for the current window",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "type",
							Description: "Task type",
							Required:    true,
							Choices:     taskTypeChoices,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "action",
					Description: "Record a task completion",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "type",
							Description: "Task type",
							Required:    true,
							Choices:     taskTypeChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "ic_name",
							Description: "In-character player name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "ooc_name",
							Description: "Out-of-character player name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "xp",
							Description: "XP amount",
							Required:    true,
							MinValue:    &minAmount,
						},
					},
				},
			},
		},
	}
}

// registerCommands registers all slash commands for the guild
func registerCommands(s *discordgo.Session, guildID string) error {
	commands := buildCommands(config.AppConfig.TrackedItems)
	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd); err != nil {
			return fmt.Errorf("registering /%s: %w", cmd.Name, err)
		}
		log.Printf("✅ Registered command: /%s", cmd.Name)
	}
	return nil
}

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ [INTERACTION HANDLER] Panic recovered: %v\n%s", r, debug.Stack())
		}
	}()

	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	config.UpdateSharedActivity()

	data := i.ApplicationCommandData()
	switch data.Name {
	case "inventory":
		handleInventoryCommand(s, i)
	case "addinventory":
		handleAddInventoryCommand(s, i, data)
	case "task":
		handleTaskCommand(s, i, data)
	}
}

func handleInventoryCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	items, err := store.ListItems()
	if err != nil {
		log.Printf("❌ Error loading inventory: %v", err)
		respondError(s, i, "Failed to load inventory.")
		return
	}
	respondEmbed(s, i, buildInventoryEmbed(items))
}

func handleAddInventoryCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data.Options)
	action := opts["action"].StringValue()
	itemName := opts["item"].StringValue()
	amount := int(opts["amount"].IntValue())

	username := interactionUser(i)
	item, err := store.ApplyTransaction(action, itemName, amount, username, username)
	if err != nil {
		respondError(s, i, friendlyLedgerError(err))
		return
	}

	title := "✅ Inventory Updated"
	color := 0x10B981
	if action == ledger.TransactionRemove {
		color = 0xF59E0B
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: title,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Item", Value: item.Name, Inline: true},
			{Name: "Amount", Value: fmt.Sprintf("%d", amount), Inline: true},
			{Name: "New Quantity", Value: fmt.Sprintf("%d", item.Quantity), Inline: true},
		},
	})

	refreshInventoryStatus(s)
}

func handleTaskCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "status":
		handleTaskStatus(s, i, opts["type"].StringValue())
	case "action":
		handleTaskAction(s, i, opts)
	}
}

func handleTaskStatus(s *discordgo.Session, i *discordgo.InteractionCreate, taskType string) {
	switch taskType {
	case "drug":
		status, err := store.DrugTaskStatus()
		if err != nil {
			log.Printf("❌ Error loading drug task status: %v", err)
			respondError(s, i, "Failed to load task status.")
			return
		}
		respondEmbed(s, i, buildDrugTaskEmbed(status))
	case "gang":
		status, err := store.GangTaskStatus()
		if err != nil {
			log.Printf("❌ Error loading gang task status: %v", err)
			respondError(s, i, "Failed to load task status.")
			return
		}
		respondEmbed(s, i, buildGangTaskEmbed(status))
	}
}

func handleTaskAction(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	taskType := opts["type"].StringValue()
	icName := opts["ic_name"].StringValue()
	oocName := opts["ooc_name"].StringValue()
	xp := int(opts["xp"].IntValue())

	var completion *ledger.XPCompletion
	var err error
	var taskLabel string
	switch taskType {
	case "drug":
		taskLabel = "Drug Task"
		completion, err = store.AddDrugTaskXP(icName, oocName, xp)
	case "gang":
		taskLabel = "Gang Task"
		completion, err = store.AddGangTaskXP(icName, oocName, xp)
	default:
		return
	}

	if err != nil {
		respondError(s, i, friendlyLedgerError(err))
		return
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("✅ %s Completed", taskLabel),
		Color: 0x10B981,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Player", Value: completion.ICPlayerName, Inline: true},
			{Name: "OOC", Value: completion.OOCPlayerName, Inline: true},
			{Name: "XP", Value: fmt.Sprintf("%d", completion.XPAmount), Inline: true},
		},
	})

	if taskType == "drug" {
		refreshDrugTaskStatus(s)
	} else {
		refreshGangTaskStatus(s)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// interactionUser returns the invoking user's name for guild and DM contexts
func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return "Unknown"
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ " + message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}
