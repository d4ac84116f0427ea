package database

// schema holds idempotent table definitions per dialect. Decimals are stored
// as text so values round trip exactly. Timestamps are unix nanoseconds.
var schema = map[string][]string{
	DBSQLite3: {
		`CREATE TABLE IF NOT EXISTS backtest_run (
			id text NOT NULL PRIMARY KEY,
			pair text NOT NULL,
			strategy text NOT NULL,
			nickname text,
			initial_capital text NOT NULL,
			stake_fraction text NOT NULL,
			fee_rate text NOT NULL,
			minimum_tradable_amount text NOT NULL,
			final_capital text NOT NULL,
			total_trades integer NOT NULL,
			wins integer NOT NULL,
			losses integer NOT NULL,
			rejected_signals integer NOT NULL,
			stoploss_hits integer NOT NULL,
			report text NOT NULL,
			created_at integer NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS backtest_trade (
			id text NOT NULL PRIMARY KEY,
			backtest_run_id text NOT NULL,
			sequence integer NOT NULL,
			entry_time integer NOT NULL,
			exit_time integer NOT NULL,
			exit_reason text NOT NULL,
			entry_price text NOT NULL,
			exit_price text NOT NULL,
			coin_amount text NOT NULL,
			stake_amount text NOT NULL,
			entry_fee text NOT NULL,
			exit_fee text NOT NULL,
			net_proceeds text NOT NULL,
			pnl_absolute text NOT NULL,
			pnl_percent text NOT NULL,
			FOREIGN KEY(backtest_run_id) REFERENCES backtest_run(id) ON DELETE CASCADE,
			UNIQUE(backtest_run_id, sequence)
		);`,
	},
	DBPostgreSQL: {
		`CREATE TABLE IF NOT EXISTS backtest_run (
			id uuid PRIMARY KEY NOT NULL,
			pair varchar(64) NOT NULL,
			strategy varchar(64) NOT NULL,
			nickname text,
			initial_capital text NOT NULL,
			stake_fraction text NOT NULL,
			fee_rate text NOT NULL,
			minimum_tradable_amount text NOT NULL,
			final_capital text NOT NULL,
			total_trades bigint NOT NULL,
			wins bigint NOT NULL,
			losses bigint NOT NULL,
			rejected_signals bigint NOT NULL,
			stoploss_hits bigint NOT NULL,
			report text NOT NULL,
			created_at bigint NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS backtest_trade (
			id uuid PRIMARY KEY NOT NULL,
			backtest_run_id uuid NOT NULL REFERENCES backtest_run(id) ON DELETE CASCADE,
			sequence integer NOT NULL,
			entry_time bigint NOT NULL,
			exit_time bigint NOT NULL,
			exit_reason varchar(16) NOT NULL,
			entry_price text NOT NULL,
			exit_price text NOT NULL,
			coin_amount text NOT NULL,
			stake_amount text NOT NULL,
			entry_fee text NOT NULL,
			exit_fee text NOT NULL,
			net_proceeds text NOT NULL,
			pnl_absolute text NOT NULL,
			pnl_percent text NOT NULL,
			UNIQUE(backtest_run_id, sequence)
		);`,
	},
}
