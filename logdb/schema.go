// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	callID BLOB(32) NOT NULL,
	callTime INTEGER NOT NULL,
	caller BLOB(20) NOT NULL,
	address BLOB(20) NOT NULL,
	name TEXT NOT NULL,
	subject BLOB(20) NOT NULL,
	amount BLOB,
	data BLOB
);

CREATE INDEX IF NOT EXISTS event_i_callID ON event(callID);
CREATE INDEX IF NOT EXISTS event_i_callTime ON event(callTime);
CREATE INDEX IF NOT EXISTS event_i_address ON event(address, name);
CREATE INDEX IF NOT EXISTS event_i_subject ON event(subject);
`
