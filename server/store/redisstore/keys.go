package redisstore

import "strconv"

type keys struct {
	prefix string
}

func (k keys) poll(id int64) string {
	return k.prefix + "poll:" + strconv.FormatInt(id, 10)
}

func (k keys) creator(userID string) string {
	return k.prefix + "creator:" + userID
}

func (k keys) counter() string { return k.prefix + "counter" }
func (k keys) version() string { return k.prefix + "version" }
func (k keys) owner() string   { return k.prefix + "owner" }
