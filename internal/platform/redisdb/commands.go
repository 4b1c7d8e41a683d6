package redisdb

import "strings"

// writeCommands classifies commands that mutate the dataset or its
// configuration. Read-only enforcement (the MCP adapter and --readonly
// surfaces) checks the first whole token of a command line against this set;
// arguments never affect the classification.
var writeCommands = map[string]struct{}{
	// strings
	"set": {}, "setnx": {}, "setex": {}, "psetex": {}, "setrange": {},
	"append": {}, "getset": {}, "getdel": {}, "getex": {},
	"incr": {}, "decr": {}, "incrby": {}, "decrby": {}, "incrbyfloat": {},
	"mset": {}, "msetnx": {}, "setbit": {}, "bitop": {}, "bitfield": {},

	// generic keyspace
	"del": {}, "unlink": {}, "expire": {}, "pexpire": {}, "expireat": {},
	"pexpireat": {}, "persist": {}, "rename": {}, "renamenx": {},
	"move": {}, "copy": {}, "restore": {}, "migrate": {}, "sort": {},

	// lists
	"lpush": {}, "rpush": {}, "lpushx": {}, "rpushx": {}, "lpop": {},
	"rpop": {}, "blpop": {}, "brpop": {}, "lset": {}, "linsert": {},
	"lrem": {}, "ltrim": {}, "rpoplpush": {}, "brpoplpush": {},
	"lmove": {}, "blmove": {}, "lmpop": {}, "blmpop": {},

	// sets
	"sadd": {}, "srem": {}, "spop": {}, "smove": {},
	"sinterstore": {}, "sunionstore": {}, "sdiffstore": {},

	// sorted sets
	"zadd": {}, "zrem": {}, "zincrby": {}, "zpopmin": {}, "zpopmax": {},
	"bzpopmin": {}, "bzpopmax": {}, "zmpop": {}, "bzmpop": {},
	"zremrangebyrank": {}, "zremrangebyscore": {}, "zremrangebylex": {},
	"zrangestore": {}, "zdiffstore": {}, "zinterstore": {}, "zunionstore": {},

	// hashes
	"hset": {}, "hsetnx": {}, "hmset": {}, "hdel": {},
	"hincrby": {}, "hincrbyfloat": {},

	// streams
	"xadd": {}, "xdel": {}, "xtrim": {}, "xsetid": {}, "xgroup": {},
	"xclaim": {}, "xautoclaim": {}, "xack": {}, "xreadgroup": {},

	// hyperloglog and geo
	"pfadd": {}, "pfmerge": {}, "geoadd": {},
	"georadius": {}, "georadiusbymember": {}, "geosearchstore": {},

	// server / database scope
	"flushdb": {}, "flushall": {}, "swapdb": {}, "config": {},
	"script": {}, "eval": {}, "evalsha": {}, "fcall": {}, "function": {},
}

// IsWriteCommand reports whether a command line begins with a mutating
// command. Matching is by whole first token, case-insensitive.
func IsWriteCommand(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	_, ok := writeCommands[strings.ToLower(fields[0])]
	return ok
}
