package model

import "amresponde/platform"

func InstallDB() {
	db := platform.DB
	if err := db.AutoMigrate(
		&User{},
		&Conversation{},
		&WidgetConversation{}); err != nil {
		panic(err)
	}
}
