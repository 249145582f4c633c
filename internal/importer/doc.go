// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

/*
Package importer loads a CSV dataset into the catalog.

Files are read from one directory in dependency order:

	users.csv        id,username,email,role,bio,first_name,last_name
	category.csv     id,name,slug
	genre.csv        id,name,slug
	titles.csv       id,name,year,category[,description]
	genre_title.csv  id,title_id,genre_id
	review.csv       id,title_id,text,author,score,pub_date
	comments.csv     id,review_id,text,author,pub_date

The id columns are keys within the dataset only. Every row gets a fresh
storage ID and the foreign-key columns are rewritten through per-entity key
maps, so a dataset can be loaded into a database that already has rows.

Each row passes the same validation as the HTTP API and is written through
the same storage methods, so uniqueness rules (one review per author and
title, case-insensitive usernames and emails) hold for imported data too.

By default the first bad row aborts the run with a *RowError naming its
file and line. With Options.SkipInvalid the row is logged, counted and
skipped. A file missing from the directory is reported in the summary and
skipped.
*/
package importer
