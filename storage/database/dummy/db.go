// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/learning"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user     *userTable
		learning *learningTables
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	learningTables struct {
		sync.RWMutex
		courses     map[string]*learning.Course
		activities  map[string]*learning.Activity
		resources   map[string]*learning.Resource
		objectives  map[string]*learning.Objective
		attachments map[string]*learning.EntityObjective
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		learning: &learningTables{
			courses:     make(map[string]*learning.Course),
			activities:  make(map[string]*learning.Activity),
			resources:   make(map[string]*learning.Resource),
			objectives:  make(map[string]*learning.Objective),
			attachments: make(map[string]*learning.EntityObjective),
		},
	}
	return db, nil
}
