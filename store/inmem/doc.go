/*
Package inmem implements the store interface on top of a process local map.
It is meant to get repodeck up and running quickly without a dedicated
database; cached data does not survive a restart.
*/
package inmem
