// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package data embeds the SQL migrations shipped with the server binary.
package data

import "embed"

// Migrations holds the golang-migrate files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside [Migrations] holding the files.
const MigrationsDir = "migrations"
