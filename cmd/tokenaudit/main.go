package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"TallyChat/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// tokenaudit prints per-user token balances and conversation counts from
// the service database. Operator tool, read-only.
func main() {
	dbPath := flag.String("db", "app.db", "path to the sqlite database")
	flag.Parse()

	db, err := gorm.Open(sqlite.Open(*dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	var users []models.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		log.Fatalf("failed to load users: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tBALANCE\tCONVERSATIONS\tMESSAGES")
	for _, u := range users {
		balance := "unset"
		if n, ok := u.Tokens(); ok {
			balance = fmt.Sprintf("%d", n)
		}

		var convCount int64
		db.Model(&models.Conversation{}).Where("user_id = ?", u.ID).Count(&convCount)

		var msgCount int64
		db.Model(&models.Message{}).
			Joins("JOIN conversations ON conversations.id = messages.conversation_id").
			Where("conversations.user_id = ?", u.ID).
			Count(&msgCount)

		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", u.ID, u.Username, balance, convCount, msgCount)
	}
	w.Flush()
}
